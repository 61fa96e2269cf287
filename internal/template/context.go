package template

import (
	"encoding/json"

	"github.com/agencykit/contractd/internal/types"
)

// Context carries the data a template is rendered against. Scalars feed
// {{field}} references; Related feeds each regions and the payments table.
// The zero Context is valid and leaves every token untouched.
type Context struct {
	Scalars map[string]interface{} `json:"contractData"`
	Related RelatedData            `json:"relatedData"`
}

// RelatedData holds the named arrays consumed by repeated regions. A nil
// slice means the collection was absent from the payload; an empty non-nil
// slice means it was present with zero items. The distinction matters: absent
// collections leave their template regions untouched.
type RelatedData struct {
	SelectedMilestones []Milestone `json:"selectedMilestones"`
	Products           []Product   `json:"products"`
	Payments           []Payment   `json:"payments"`
}

// Milestone is one item of the selectedMilestones collection.
type Milestone struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Product is one item of the products collection.
type Product struct {
	Title        string            `json:"title"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Price        types.FlexFloat64 `json:"price"`
	Deliverables []Deliverable     `json:"deliverables"`
}

// Deliverable accepts either a bare JSON string or an object with a title.
type Deliverable struct {
	Title string `json:"title"`
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Deliverable) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		d.Title = s
		return nil
	}

	type alias Deliverable
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = Deliverable(a)
	return nil
}

// Payment is one row of the payment schedule.
type Payment struct {
	Title      string            `json:"title"`
	Amount     types.FlexFloat64 `json:"amount"`
	DueDate    string            `json:"due_date"`
	AltDueDate string            `json:"alt_due_date"`
}
