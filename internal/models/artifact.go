package models

// BuildStatus is the lifecycle state of a build artifact.
type BuildStatus string

const (
	BuildPending BuildStatus = "pending"
	BuildBuilt   BuildStatus = "built"
	BuildFailed  BuildStatus = "failed"
)

// BuildArtifact is the output of compiling a workload spec. Owned by
// the builder, cached by content hash, and reused across trials.
type BuildArtifact struct {
	Spec       WorkloadSpec
	Hash       string // content hash over the build-affecting spec fields
	WorkDir    string
	Executable string // runnable target; meaning depends on the environment
	BuildLog   string // captured compiler output
	Status     BuildStatus
}
