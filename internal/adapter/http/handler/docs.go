package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Pooled Multisender Ledger</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({ url: '%s', dom_id: '#swagger-ui', layout: 'BaseLayout',
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset] });
  </script>
</body>
</html>`

// APIDocs serves the embedded OpenAPI document and a browser UI for it.
type APIDocs struct {
	spec    []byte
	etag    string
	specURL string
}

func NewAPIDocs(spec []byte, specURL string) *APIDocs {
	d := &APIDocs{spec: spec, specURL: specURL}
	if len(spec) > 0 {
		digest := sha256.Sum256(spec)
		d.etag = `"` + hex.EncodeToString(digest[:8]) + `"`
	}
	return d
}

// Spec returns the raw YAML. Clients revalidate with If-None-Match.
func (d *APIDocs) Spec(c *gin.Context) {
	if len(d.spec) == 0 {
		c.String(http.StatusNotFound, "API document not loaded")
		return
	}
	c.Header("ETag", d.etag)
	if c.GetHeader("If-None-Match") == d.etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/yaml", d.spec)
}

func (d *APIDocs) UI(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", fmt.Appendf(nil, docsPage, d.specURL))
}
