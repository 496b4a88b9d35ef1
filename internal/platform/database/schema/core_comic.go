package schema

// CoreComicTable represents the 'core.comic' table
type CoreComicTable struct {
	Table      string
	ID         string
	Title      string
	Slug       string
	Author     string
	Status     string
	Summary    string
	Genres     string
	CoverURL   string
	Chapters   string
	UploadedBy string
	IsApproved string
	CreatedAt  string
	UpdatedAt  string
	DeletedAt  string
}

// CoreComic is the schema definition for core.comic
var CoreComic = CoreComicTable{
	Table:      "core.comic",
	ID:         "id",
	Title:      "title",
	Slug:       "slug",
	Author:     "author",
	Status:     "status",
	Summary:    "summary",
	Genres:     "genres",
	CoverURL:   "coverurl",
	Chapters:   "chapters",
	UploadedBy: "uploadedby",
	IsApproved: "isapproved",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
	DeletedAt:  "deletedat",
}

// Columns returns all standard column names
func (t CoreComicTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Author, t.Status, t.Summary, t.Genres,
		t.CoverURL, t.Chapters, t.UploadedBy, t.IsApproved,
		t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
