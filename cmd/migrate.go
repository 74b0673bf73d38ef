package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/spf13/cobra"

	"commerce.GO/config"
	"commerce.GO/migrations"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Apply embedded schema migrations (use --down to roll back one step)",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}
		sqldb, err := db.DB()
		if err != nil {
			fmt.Printf("Failed to get DB instance: %v\n", err)
			os.Exit(1)
		}

		src, err := iofs.New(migrations.FS, ".")
		if err != nil {
			fmt.Printf("Failed to load migrations: %v\n", err)
			os.Exit(1)
		}
		driver, err := mysql.WithInstance(sqldb, &mysql.Config{})
		if err != nil {
			fmt.Printf("Failed to init migrate driver: %v\n", err)
			os.Exit(1)
		}
		m, err := migrate.NewWithInstance("iofs", src, "mysql", driver)
		if err != nil {
			fmt.Printf("Failed to init migrate: %v\n", err)
			os.Exit(1)
		}

		if migrateDown {
			err = m.Steps(-1)
		} else {
			err = m.Up()
		}
		if err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				fmt.Println("Schema already up to date.")
				return
			}
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		version, dirty, _ := m.Version()
		fmt.Printf("Schema at version %d (dirty=%v)\n", version, dirty)
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back the most recent migration")
	rootCmd.AddCommand(migrateCmd)
}
