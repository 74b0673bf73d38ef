package config

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

// Static job table. The inventory jobs need repository access and
// register themselves through cron.Register instead (see cron/jobs),
// which keeps this package free of repository imports.
var CronJobs = map[string]CronJob{
	// Add more jobs here
}
