package docs

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>TubeCafe API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({ url: "/docs/openapi.json", dom_id: "#swagger-ui" });
  </script>
</body>
</html>`

// Register mounts /docs, /docs/openapi.json and /docs/openapi.yaml. The
// document is built from r.Routes() on first request, after every route has
// been registered.
func Register(r *gin.Engine, o Options) {
	var (
		once    sync.Once
		doc     Document
		yamlDoc []byte
		yamlErr error
	)
	load := func() {
		once.Do(func() {
			doc = Build(r.Routes(), o)
			yamlDoc, yamlErr = yaml.Marshal(doc)
		})
	}

	r.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerPage))
	})
	r.GET("/docs/openapi.json", func(c *gin.Context) {
		load()
		c.JSON(http.StatusOK, doc)
	})
	r.GET("/docs/openapi.yaml", func(c *gin.Context) {
		load()
		if yamlErr != nil {
			_ = c.Error(yamlErr)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "application/yaml; charset=utf-8", yamlDoc)
	})
}
