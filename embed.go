package bike

import "embed"

//go:embed templates/emails
var EmailFS embed.FS
