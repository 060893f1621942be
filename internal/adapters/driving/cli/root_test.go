package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driving"
	"github.com/custodia-labs/parity-cli/internal/logger"
)

// stubComparison satisfies driving.ComparisonService without doing work.
type stubComparison struct{}

func (stubComparison) CompareFiles(context.Context, driving.CompareRequest) (*domain.ComparisonRun, error) {
	return nil, errors.New("not implemented")
}

func (stubComparison) Compare(context.Context, driving.CompareInput) (*domain.ComparisonRun, error) {
	return nil, errors.New("not implemented")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"quality below", fmt.Errorf("%w: 0.4 < 0.7", ErrQualityBelow), exitQualityBelow},
		{"invalid input", fmt.Errorf("compare failed: %w", domain.ErrInvalidInput), exitInvalidInput},
		{"invalid config", domain.ErrInvalidConfig, exitInvalidInput},
		{"unsupported type", domain.ErrUnsupportedType, exitInvalidInput},
		{"other", errors.New("boom"), exitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestRootCmd_InitializerReceivesGlobalFlags(t *testing.T) {
	SetServices(nil)
	defer SetServices(nil)

	var got GlobalOptions
	closed := 0
	SetInitializer(func(opts GlobalOptions) (*Services, error) {
		got = opts
		return &Services{
			Comparison: &stubComparison{},
			Close:      func() error { closed++; return nil },
		}, nil
	})
	defer SetInitializer(nil)
	defer logger.SetVerbose(false)

	_, err := execute(t, "--config-dir", "/tmp/parity-cfg", "--data-dir", "/tmp/parity-data", "-v", "version")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/parity-cfg", got.ConfigDir)
	assert.Equal(t, "/tmp/parity-data", got.DataDir)
	assert.True(t, got.Verbose)
	assert.Equal(t, 1, closed)
}

func TestRootCmd_InitializerError(t *testing.T) {
	SetServices(nil)
	SetInitializer(func(GlobalOptions) (*Services, error) {
		return nil, errors.New("cannot open database")
	})
	defer SetInitializer(nil)

	_, err := execute(t, "version")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open database")
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"compare", "runs", "settings", "mcp", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
