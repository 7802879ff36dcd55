package main

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/flowprep/internal/domain/provision"
)

type fakePlanClient struct {
	plan *provision.Plan
	err  error

	configPath  string
	printCalled bool
}

func (f *fakePlanClient) Plan(_ context.Context, configPath string) (*provision.Plan, error) {
	f.configPath = configPath
	return f.plan, f.err
}

func (f *fakePlanClient) PrintPlan(_ *provision.Plan) {
	f.printCalled = true
}

func overrideNewPlanApp(fake *fakePlanClient) func() {
	orig := newPlanApp
	newPlanApp = func(_ io.Writer) planClient { return fake }
	return func() { newPlanApp = orig }
}

func TestPlanCmd_IsSubcommandOfRoot(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "plan" {
			found = true
			break
		}
	}
	assert.True(t, found, "plan should be a subcommand of root")
}

func TestRunPlan_Success(t *testing.T) {
	fake := &fakePlanClient{plan: provision.NewPlan()}
	restore := overrideNewPlanApp(fake)
	defer restore()

	err := runPlan(planCmd, nil)
	require.NoError(t, err)
	assert.True(t, fake.printCalled)
	assert.Equal(t, "flowprep.yaml", fake.configPath)
}

func TestRunPlan_Error(t *testing.T) {
	fake := &fakePlanClient{err: errors.New("check step failed")}
	restore := overrideNewPlanApp(fake)
	defer restore()

	err := runPlan(planCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan failed")
	assert.False(t, fake.printCalled)
}
