package cli

import "text/template"

const entityListTemplate = `
=== Saved {{ .Type }} records ===

{{- if eq (len .Rows) 0 }}
No {{ .Type }} records found.

{{ else }}
Found {{ len .Rows }} record(s):

{{- range .Rows }}
- {{ .Summary }}
   ID:      {{ .ID }}
   Updated: {{ .Updated }}
   {{- if .Flags }}
   Flags:   {{ .Flags }}
   {{- end }}

{{- end }}
Use 'fitsync get {{ .Type }} <id>' to view full details.
{{- end }}
`

const entityDetailsTemplate = `
=== {{ .Type }} details ===

ID:      {{ .ID }}
Owner:   {{ .OwnerID }}
Device:  {{ .DeviceID }}
Created: {{ .CreatedAt }}
Updated: {{ .Updated }}
{{- if .Orphaned }}
Warning: the program or training day of this record was deleted
{{- end }}
{{- if .NeedsReview }}
Warning: deleted on another device while edited here, save it again to keep it
{{- end }}

`

var (
	entityListTmpl    = template.Must(template.New("list").Parse(entityListTemplate))
	entityDetailsTmpl = template.Must(template.New("details").Parse(entityDetailsTemplate))
)

type entityRow struct {
	ID      string
	Summary string
	Updated string
	Flags   string
}

type entityList struct {
	Type string
	Rows []entityRow
}

type entityDetails struct {
	Type        string
	ID          string
	OwnerID     string
	DeviceID    string
	CreatedAt   string
	Updated     string
	Orphaned    bool
	NeedsReview bool
}
