package dependency

// ConfigurationDependency records a configuration key an insertable consulted
// and the canonical stringification of its value at record time.
type ConfigurationDependency struct {
	ConfigKeyPath string `json:"config_key_path"`
	Policy        Policy `json:"policy"`
	RecordedValue string `json:"recorded_value"`
}

// Equal reports equality over every field.
func (c ConfigurationDependency) Equal(other ConfigurationDependency) bool {
	return c == other
}
