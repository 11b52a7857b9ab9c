package model

// Document is the stored record for one uploaded PDF. TextContent is
// extracted once at upload time and never re-extracted afterwards.
type Document struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	PageCount   int    `json:"page_count"`
	TextContent string `json:"text_content"`
	UploadDate  int64  `json:"upload_date"`
}
