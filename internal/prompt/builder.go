package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// TemplateName is the file name of an embedded prompt template.
type TemplateName string

const (
	TemplateSDGClassification  TemplateName = "sdg_classification.tmpl"
	TemplateEmotionDetection   TemplateName = "emotion_detection.tmpl"
	TemplateSupportiveResponse TemplateName = "supportive_response.tmpl"
	TemplatePostGeneration     TemplateName = "post_generation.tmpl"
)

var templates = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"join": strings.Join}).
		Option("missingkey=error").
		ParseFS(templateFS, "templates/*.tmpl"),
)

// Render executes one embedded template. Trailing newlines are trimmed.
func Render(name TemplateName, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(name), data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
