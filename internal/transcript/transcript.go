package transcript

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"pdf-rag/internal/models"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Chat transcript</title></head>
<body>
%s</body>
</html>
`

// Render converts the chat history into a standalone HTML page. Assistant
// answers are markdown-ish model output, so they go through a real markdown
// renderer rather than naive escaping.
func Render(history []models.ChatTurn) ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)

	var source strings.Builder
	source.WriteString("# Chat transcript\n\n")
	for _, turn := range history {
		label := "You"
		if turn.Role == models.RoleAssistant {
			label = "Assistant"
		}
		source.WriteString(fmt.Sprintf("**%s:**\n\n%s\n\n---\n\n", label, turn.Content))
	}

	var body bytes.Buffer
	if err := md.Convert([]byte(source.String()), &body); err != nil {
		return nil, fmt.Errorf("failed to render transcript: %w", err)
	}
	return []byte(fmt.Sprintf(pageTemplate, body.String())), nil
}

// Save writes the rendered transcript to path.
func Save(path string, history []models.ChatTurn) error {
	page, err := Render(history)
	if err != nil {
		return err
	}
	return os.WriteFile(path, page, 0o644)
}
