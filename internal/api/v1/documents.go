package v1

import (
	"fmt"
	"net/http"

	"github.com/agencyops/agencyops/internal/storage"
	"github.com/gin-gonic/gin"
)

// serveDocument streams a stored PDF. Inline documents open in the browser,
// downloads are sent as attachments.
func serveDocument(c *gin.Context, f *storage.File, download bool) {
	defer f.Content.Close()

	disposition := "inline"
	if download {
		disposition = "attachment"
	}
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, f.Name))
	http.ServeContent(c.Writer, c.Request, f.Name, f.ModTime, f.Content)
}
