package graphql

import (
	"net/http"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"commerce.GO/api"
	graphqlpkg "commerce.GO/graphql"
)

func init() {
	api.RegisterRoute(RegisterGraphQLRoutes)
}

// RegisterGraphQLRoutes mounts the read-only GraphQL endpoint on the
// root instance. The /graphql path sits outside the /api auth group.
func RegisterGraphQLRoutes(e *echo.Echo, db *gorm.DB) {
	schema, err := graphqlpkg.NewSchema(db)
	if err != nil {
		panic("graphql schema: " + err.Error())
	}
	registerRoutes(e, schema)
}

// RegisterGraphQLRoutesWithSchema registers /graphql with a custom schema (for tests with mocks).
func RegisterGraphQLRoutesWithSchema(e *echo.Echo, schema *gql.Schema) {
	registerRoutes(e, schema)
}

func registerRoutes(e *echo.Echo, schema *gql.Schema) {
	h := echo.WrapHandler(&relay.Handler{Schema: schema})
	e.POST("/graphql", h)
	e.GET("/graphql", h)
	e.GET("/playground", echo.WrapHandler(playgroundHandler()))
}

func playgroundHandler() http.Handler {
	html := `<!DOCTYPE html>
<html>
<head>
	<title>GraphQL Playground</title>
	<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/css/index.css"/>
</head>
<body>
	<div id="root"/>
	<script src="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/js/middleware.js"></script>
	<script>window.addEventListener('load', function() {
		GraphQLPlayground.init({ endpoint: '/graphql' });
	})</script>
</body>
</html>`
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	})
}
