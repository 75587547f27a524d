package classify

import "encoding/json"

// Datasource is the retrieval path chosen for a query.
type Datasource int

const (
	DatasourceLocal Datasource = iota
	DatasourceWeb
	DatasourceHybrid
)

const (
	datasourceLocalToken  = "local_rag"
	datasourceWebToken    = "web_search"
	datasourceHybridToken = "hybrid"
)

func (d Datasource) String() string {
	switch d {
	case DatasourceLocal:
		return datasourceLocalToken
	case DatasourceHybrid:
		return datasourceHybridToken
	default:
		return datasourceWebToken
	}
}

// ParseDatasource maps a wire token to a Datasource. Anything
// unrecognized coerces to web.
func ParseDatasource(s string) Datasource {
	switch s {
	case datasourceLocalToken:
		return DatasourceLocal
	case datasourceHybridToken:
		return DatasourceHybrid
	default:
		return DatasourceWeb
	}
}

func (d Datasource) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Datasource) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = ParseDatasource(s)
	return nil
}

// Decision is the classifier's answer for one query. It is immutable
// once produced.
type Decision struct {
	Datasource Datasource `json:"datasource"`
	Reasoning  string     `json:"reasoning"`
	Confidence float64    `json:"confidence"`
}
