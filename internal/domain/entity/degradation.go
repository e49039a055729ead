package entity

// Pipeline stages that can absorb an error.
const (
	StageInventory = "inventory"
	StageCollector = "collector"
	StagePublish   = "publish"
)

// Degradation records an error that was absorbed instead of failing the run.
// Every degradation is part of the published snapshot.
type Degradation struct {
	Stage   string `json:"stage"`
	Target  string `json:"target"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
