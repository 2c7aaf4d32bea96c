package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/rxnsim/internal/sim"
)

// Document is the JSON form of a run.
type Document struct {
	ID       string             `json:"id,omitempty"`
	Source   string             `json:"source"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	Series   []sim.Series       `json:"series"`
	Metrics  map[string]float64 `json:"metrics"`
}

func NewDocument(source string, cfg sim.Config, result *sim.Result) Document {
	return Document{
		Source:   source,
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		Steps:    result.StepsTaken,
		Times:    result.Times,
		Series:   result.Series,
		Metrics:  result.Metrics,
	}
}

// Result returns the run held by the document.
func (d Document) Result() *sim.Result {
	return &sim.Result{
		Times:      d.Times,
		Series:     d.Series,
		Metrics:    d.Metrics,
		StepsTaken: d.Steps,
	}
}

func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func ReadJSON(r io.Reader) (Document, error) {
	var doc Document
	err := json.NewDecoder(r).Decode(&doc)
	return doc, err
}

// ExportJSON writes the document to path, or to stdout when path is "-".
func ExportJSON(path string, doc Document) error {
	if path == "-" {
		return WriteJSON(os.Stdout, doc)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, doc)
}
