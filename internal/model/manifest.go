package model

import "sort"

// Manifest lists the files generated per report date, for upload and mailing.
type Manifest struct {
	ParentFolderID string              `json:"parent_folder_id"`
	Files          map[string][]string `json:"files"`
}

// Dates returns the manifest dates in ascending order.
func (m *Manifest) Dates() []string {
	dates := make([]string, 0, len(m.Files))
	for d := range m.Files {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// AllFiles returns every file of the manifest, date by date.
func (m *Manifest) AllFiles() []string {
	var files []string
	for _, d := range m.Dates() {
		files = append(files, m.Files[d]...)
	}
	return files
}
