// internal/adzuna/models.go
package adzuna

import (
	"encoding/json"
	"fmt"
	"time"

	"jobmatch-pipeline/internal/models"
)

// searchResponse is the top-level search envelope.
type searchResponse struct {
	Results []wireJob `json:"results"`
	Count   int       `json:"count"`
}

// wireJob is one posting record as the provider sends it. Company, location
// and category arrive either as a bare string or as a nested object
// depending on endpoint version, so they decode through flexibleName.
type wireJob struct {
	ID              flexibleID   `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Company         flexibleName `json:"company"`
	Location        flexibleName `json:"location"`
	Category        flexibleName `json:"category"`
	RedirectURL     string       `json:"redirect_url"`
	SalaryMin       *float64     `json:"salary_min"`
	SalaryMax       *float64     `json:"salary_max"`
	SalaryPredicted flexibleBool `json:"salary_is_predicted"`
	Created         string       `json:"created"`
	ContractType    string       `json:"contract_type"`
}

// flexibleName accepts "Acme Ltd" as well as {"display_name": "Acme Ltd"}
// or {"label": "IT Jobs"}.
type flexibleName struct {
	Value string
}

func (f *flexibleName) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Value = s
		return nil
	}

	var obj struct {
		DisplayName string   `json:"display_name"`
		Label       string   `json:"label"`
		Area        []string `json:"area"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		// Unexpected shape (number, array). Leave empty rather than
		// failing the whole results page.
		f.Value = ""
		return nil
	}

	switch {
	case obj.DisplayName != "":
		f.Value = obj.DisplayName
	case obj.Label != "":
		f.Value = obj.Label
	case len(obj.Area) > 0:
		f.Value = obj.Area[len(obj.Area)-1]
	}
	return nil
}

// flexibleID accepts both string and numeric provider ids.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexibleID(n.String())
		return nil
	}
	*f = ""
	return nil
}

// flexibleBool accepts true/false as well as the "1"/"0" strings the
// provider uses for salary_is_predicted.
type flexibleBool bool

func (f *flexibleBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexibleBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = s == "1" || s == "true"
		return nil
	}
	*f = false
	return nil
}

// toPosting normalizes one wire record into the canonical posting shape.
// Every text field downstream is a plain string with an empty default.
func (w *wireJob) toPosting(detailsBaseURL string) models.JobPosting {
	url := w.RedirectURL
	if url == "" && w.ID != "" {
		url = fmt.Sprintf("%s/%s", detailsBaseURL, string(w.ID))
	}

	created, _ := time.Parse(time.RFC3339, w.Created)

	return models.JobPosting{
		ProviderID:      string(w.ID),
		Title:           w.Title,
		Company:         w.Company.Value,
		Location:        w.Location.Value,
		Description:     w.Description,
		Category:        w.Category.Value,
		ContractType:    w.ContractType,
		RedirectURL:     url,
		SalaryMin:       w.SalaryMin,
		SalaryMax:       w.SalaryMax,
		SalaryPredicted: bool(w.SalaryPredicted),
		Created:         created,
	}
}
