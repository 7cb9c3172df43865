package cmd

// Text output templates. They run with the sprig function map.

const compileReport = `{{ define "loc" }}{{ if .File }}{{ .File }}{{ if .Line }}:{{ .Line }}{{ end }}: {{ end }}{{ end -}}
{{ ternary "Build succeeded" "Build failed" .Success }} in {{ .DurationMS }}ms
{{- with .PDFPath }}
  pdf: {{ . }}
{{- end }}
{{- with .LogPath }}
  log: {{ . }}
{{- end }}
{{- range .Errors }}
error: {{ template "loc" . }}{{ .Message | trim }}
{{- end }}
{{- range .Warnings }}
warning: {{ template "loc" . }}{{ .Message | trim }}
{{- end }}
`

const cleanReport = "Cleaned output of {{ .ProjectDir }}\n"

const newReport = `Created "{{ .ProjectName }}" in {{ .ProjectDir }} from template {{ .TemplateID }}
Next: easypaper compile {{ .ProjectDir | quote }}
`

const templateListReport = `{{ range . -}}
{{ printf "%-10s" .ID }} {{ .Name }}{{ with .Author }} ({{ . }}){{ end }}
{{ repeat 11 " " }}{{ .Description }}
{{ end -}}
`

const contentReport = "{{ . }}"

const sourceLocationReport = "{{ .File }}:{{ .Line }}{{ if ge .Column 0 }}:{{ .Column }}{{ end }}\n"

const pdfPositionReport = "page {{ .Page }} at ({{ .X }}, {{ .Y }})\n"

const fileListReport = `{{ range . -}}
{{ if .IsDir }}{{ .Path }}/{{ else }}{{ printf "%-48s" .Path }} {{ .Size }}{{ end }}
{{ end -}}
`

const existsReport = "{{ . }}\n"

const writeReport = "Wrote {{ len .Content }} bytes to {{ .Path }}\n"

const deleteReport = "Deleted {{ .Path }}\n"

const renameReport = "Renamed {{ .OldPath }} -> {{ .NewPath }}\n"

const mkdirReport = "Created {{ .Path }}\n"

const versionReport = `easypaper {{ .Version }}{{ if ne .GitCommit "unknown" }} ({{ trunc 7 .GitCommit }}){{ end }}{{ if .Dirty }} (dirty){{ end }}
{{- if not .BuildTime.IsZero }}
Built: {{ .BuildTime.UTC.Format "2006-01-02 15:04:05 UTC" }}
{{- end }}
Go: {{ .GoVersion }}
Platform: {{ .Platform }}
`
