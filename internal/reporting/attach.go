// internal/reporting/attach.go
package reporting

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/xkilldash9x/stepshot/api/schemas"
)

// ImageAlt is the alt text every attached screenshot carries.
const ImageAlt = "Screenshot"

// MarkdownImage renders the markdown image reference for a report-relative
// path, e.g. "![Screenshot](screenshots/open_homepage.png)". Each segment is
// percent-escaped so spaces and parentheses cannot break the link.
func MarkdownImage(relPath string) string {
	segments := strings.Split(filepath.ToSlash(relPath), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("![%s](%s)", ImageAlt, strings.Join(segments, "/"))
}

// Attach links a saved screenshot to the step's result. The reference is
// relative to the report directory so the report stays portable. A nil
// artifact (capture failed) leaves the result untouched.
func Attach(result *schemas.StepResult, artifact *schemas.Artifact) {
	if result == nil || artifact == nil {
		return
	}
	result.Screenshot = artifact
	result.Context = MarkdownImage(artifact.RelPath)
}
