package model

// ModelTypeLogisticRegression is the only declarative model family.
const ModelTypeLogisticRegression = "logistic_regression"

// Coefficient is one fitted weight. Order inside ModelParameters is the fitting order.
type Coefficient struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// ModelParameters is the content of a declarative parameters artifact.
type ModelParameters struct {
	ModelType    string
	ModelURI     string
	ModelName    string
	Coefficients []Coefficient
	Intercept    float64
}

// Features returns the coefficient names in fitting order.
func (p ModelParameters) Features() []string {
	out := make([]string, len(p.Coefficients))
	for i, c := range p.Coefficients {
		out[i] = c.Feature
	}
	return out
}

type FieldDescriptor struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ModelMetadata describes a resolved model to callers.
type ModelMetadata struct {
	ModelURI    string            `json:"model_uri"`
	ModelName   string            `json:"model_name"`
	InputFields []FieldDescriptor `json:"input_fields"`
}

// FieldNames returns the input field names in declared order.
func (m ModelMetadata) FieldNames() []string {
	out := make([]string, len(m.InputFields))
	for i, f := range m.InputFields {
		out[i] = f.Name
	}
	return out
}

// NumericFields builds descriptors for a list of numeric inputs.
func NumericFields(names []string) []FieldDescriptor {
	out := make([]FieldDescriptor, len(names))
	for i, n := range names {
		out[i] = FieldDescriptor{Name: n, Type: "number"}
	}
	return out
}
