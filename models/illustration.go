package models

// IllustrationFile is one image stored in the remote illustrations folder
type IllustrationFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// IllustrationSyncResult summarizes one sync run
type IllustrationSyncResult struct {
	Total      int      `json:"total"`
	Downloaded int      `json:"downloaded"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}
