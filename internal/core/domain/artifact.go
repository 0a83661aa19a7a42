package domain

// Artifact table names as written by the GraphRAG 2.x indexing pipeline.
// Each table is a parquet file of the same name in the index data directory.
const (
	TableEntities         = "entities"
	TableTextUnits        = "text_units"
	TableRelationships    = "relationships"
	TableCommunityReports = "community_reports"
	TableCommunities      = "communities"
	TableDocuments        = "documents"
)

func RequiredTables() []string {
	return []string{
		TableEntities,
		TableTextUnits,
		TableRelationships,
		TableCommunityReports,
		TableCommunities,
	}
}

func OptionalTables() []string {
	return []string{TableDocuments}
}

// Entity is one node of the knowledge graph.
type Entity struct {
	ID          string `json:"id"`
	ShortID     int    `json:"short_id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Degree      int    `json:"degree"`
	Frequency   int    `json:"frequency"`
}

// Relationship is one edge of the knowledge graph.
type Relationship struct {
	ID             string  `json:"id"`
	ShortID        int     `json:"short_id"`
	Source         string  `json:"source"`
	Target         string  `json:"target"`
	Description    string  `json:"description"`
	Weight         float64 `json:"weight"`
	CombinedDegree int     `json:"combined_degree"`
}

// TextUnit is a chunk of source text the graph was extracted from. The
// references endpoint addresses text units as "sources".
type TextUnit struct {
	ID        string `json:"id"`
	ShortID   int    `json:"short_id"`
	Text      string `json:"text"`
	NumTokens int    `json:"n_tokens"`
}

// CommunityReport is the LLM-written summary of one graph community.
type CommunityReport struct {
	ID        string  `json:"id"`
	ShortID   int     `json:"short_id"`
	Community int     `json:"community"`
	Level     int     `json:"level"`
	Title     string  `json:"title"`
	Summary   string  `json:"summary"`
	FullText  string  `json:"full_content"`
	Rank      float64 `json:"rank"`
}

// Community is one cluster in the Leiden hierarchy.
type Community struct {
	ID      string `json:"id"`
	ShortID int    `json:"short_id"`
	Level   int    `json:"level"`
	Title   string `json:"title"`
}

// Document is one ingested source document.
type Document struct {
	ID      string `json:"id"`
	ShortID int    `json:"short_id"`
	Title   string `json:"title"`
	Text    string `json:"text"`
}
