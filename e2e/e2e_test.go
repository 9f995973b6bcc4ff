// Package e2e drives the HTTP surface end to end with godog feature files.
// Every scenario gets a fresh in-memory stack.
package e2e

import (
	"testing"

	"github.com/cucumber/godog"
)

func TestFeatures(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping feature suite in short mode")
	}
	suite := godog.TestSuite{
		Name:                "examreg",
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("feature suite failed")
	}
}
