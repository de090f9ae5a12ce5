package models

// FacultyRecord is one scraped faculty biography as supplied by the
// content-acquisition pipeline (JSONL, one record per line).
type FacultyRecord struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Text string `json:"text"`
}

// RetrievedFaculty is one ranked match returned by the retriever.
// Name or URL may be empty when the index record is missing metadata;
// retrieval substitutes empty strings rather than failing the turn.
type RetrievedFaculty struct {
	Name     string  `json:"name"`
	URL      string  `json:"url"`
	Document string  `json:"document"`
	Score    float32 `json:"score"`
}
