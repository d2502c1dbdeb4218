package export

import "strings"

// detectLang maps a file extension to the language tag written on its XML
// element.
func detectLang(ext string) string {
	switch strings.ToLower(ext) {
	case ".py":
		return "python"
	case ".js":
		return "javascript"
	case ".jsx":
		return "javascriptreact"
	case ".ts":
		return "typescript"
	case ".tsx":
		return "typescriptreact"
	case ".go":
		return "go"
	case ".html":
		return "html"
	case ".css":
		return "css"
	case ".json":
		return "json"
	case ".yml", ".yaml":
		return "yaml"
	case ".sh":
		return "bash"
	case ".md":
		return "markdown"
	default:
		return "text"
	}
}
