package domain

// KeyPrefix namespaces every key this engine writes to the shared KV store.
const KeyPrefix = "matchengine:"

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model              string
	Dimensions         int
	DistanceMetric     string
	ProfileInstruction string
	QueryInstruction   string
}

// DefaultVectorConfig returns the default configuration tuned for Qwen3-Embedding-8B.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:              "Qwen3-Embedding-8B",
		Dimensions:         1024,
		DistanceMetric:     "cosine",
		ProfileInstruction: "Represent this talent profile for semantic matching",
		QueryInstruction:   "Represent this role description for retrieving matching talent",
	}
}
