// Package templates provides file templates for flowprep configuration
// initialization.
package templates

import (
	"bytes"
	"text/template"
)

// ConfigTemplate generates a starter flowprep.yaml.
const ConfigTemplate = `# flowprep run configuration
profile: {{.Profile}}
install_path: {{.InstallPath}}
host: localhost

database:
  host: localhost
  port: 5432
  admin_user: postgres
  # admin_password: ""
  # Or read admin credentials from a pg_service.conf section instead:
  # service: flowprep-admin
  password: change-me

enable_stats_extension: false
`

// ConfigData holds the values substituted into ConfigTemplate.
type ConfigData struct {
	Profile     string
	InstallPath string
}

// RenderConfig renders the starter configuration for a profile.
func RenderConfig(data ConfigData) (string, error) {
	tmpl, err := template.New("config").Parse(ConfigTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
