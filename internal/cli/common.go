package cli

import (
	"fmt"

	"github.com/managed-index/indexctl/internal/config"
	"github.com/managed-index/indexctl/internal/engine"
)

// buildEngine loads config from flagWorkspace's .indexctl/config.yml (with
// env overrides) and constructs an Engine from it.
func buildEngine() (*engine.Engine, engine.Workspace, error) {
	cfg, err := config.LoadConfigFromDir(flagWorkspace)
	if err != nil {
		return nil, engine.Workspace{}, fmt.Errorf("load config: %w", err)
	}

	ws := engine.Workspace{
		Path:           flagWorkspace,
		OrganizationID: flagOrgID,
		ProjectID:      flagProjectID,
	}

	return engine.New(*cfg), ws, nil
}

func printState(label string, s engine.State) {
	fmt.Printf("%s: status=%s branch=%s files=%d chunks=%d", label, s.Status, s.GitBranch, s.TotalFiles, s.TotalChunks)
	if s.Message != "" {
		fmt.Printf(" message=%q", s.Message)
	}
	fmt.Println()
}
