package affine

import "encoding/json"

type jsonTerm struct {
	Name  string `json:"name"`
	Coeff int64  `json:"coeff"`
}

// MarshalJSON renders the polynomial as a sorted list of {name, coeff}
// terms, constant term (name "") included only when nonzero.
func (a Affine) MarshalJSON() ([]byte, error) {
	terms := a.Terms()
	out := make([]jsonTerm, len(terms))
	for i, t := range terms {
		out[i] = jsonTerm{Name: t.Name, Coeff: t.Coeff}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reconstructs a polynomial from its term list.
func (a *Affine) UnmarshalJSON(data []byte) error {
	var terms []jsonTerm
	if err := json.Unmarshal(data, &terms); err != nil {
		return err
	}
	m := make(map[string]int64, len(terms))
	for _, t := range terms {
		if t.Coeff != 0 {
			m[t.Name] = t.Coeff
		}
	}
	a.terms = m
	return nil
}
