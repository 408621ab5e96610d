package model

// Word is one vocabulary record flattened for display.
type Word struct {
	ID          string `json:"id"`
	InputWord   string `json:"input_word"`
	Title       string `json:"title"`
	Sentence    string `json:"sentence"`
	Comment     string `json:"comment"`
	Content     string `json:"content"`
	Preview     string `json:"preview"`
	Domain      string `json:"domain"`
	Position    string `json:"position"`
	Reference   string `json:"reference"`
	CreatedTime string `json:"created_time"`
}

// WordSubmission is a new word a user wants added to the table.
type WordSubmission struct {
	UserID    string `json:"user_id"`
	Word      string `json:"word"`
	Domain    string `json:"domain"`
	SourceURL string `json:"source_url"`
}
