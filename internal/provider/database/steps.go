// Package database provides the database provisioning steps.
package database

import (
	"fmt"

	"github.com/felixgeelhaar/flowprep/internal/domain/provision"
	"github.com/felixgeelhaar/flowprep/internal/ports"
)

// CreateDatabaseStep creates the profile's backing database.
//
// The guard queries the server catalog; when the database already exists
// the creation is skipped entirely. Whether re-creation against an
// existing database with different parameters would succeed is delegated
// to the server and never exercised.
type CreateDatabaseStep struct {
	name  string
	owner string
	id    provision.StepID
	admin ports.DatabaseAdmin
}

// NewCreateDatabaseStep creates a new CreateDatabaseStep.
func NewCreateDatabaseStep(name, owner string, admin ports.DatabaseAdmin) *CreateDatabaseStep {
	return &CreateDatabaseStep{
		name:  name,
		owner: owner,
		id:    provision.MustNewStepID("database:create:" + name),
		admin: admin,
	}
}

// ID returns the step identifier.
func (s *CreateDatabaseStep) ID() provision.StepID {
	return s.id
}

// DependsOn returns the step dependencies.
func (s *CreateDatabaseStep) DependsOn() []provision.StepID {
	return nil
}

// Check determines if the database already exists.
func (s *CreateDatabaseStep) Check(ctx provision.RunContext) (provision.StepStatus, error) {
	exists, err := s.admin.DatabaseExists(ctx.Context(), s.name)
	if err != nil {
		return provision.StatusUnknown, err
	}
	if exists {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// Apply creates the database.
func (s *CreateDatabaseStep) Apply(ctx provision.RunContext) error {
	if err := s.admin.CreateDatabase(ctx.Context(), s.name, s.owner); err != nil {
		return fmt.Errorf("create database %s: %w", s.name, err)
	}
	ctx.SetOutput(s.id, "created database "+s.name)
	return nil
}

// CreateExtensionStep installs an extension into the profile's database.
type CreateExtensionStep struct {
	database  string
	extension string
	id        provision.StepID
	admin     ports.DatabaseAdmin
}

// NewCreateExtensionStep creates a new CreateExtensionStep.
func NewCreateExtensionStep(database, extension string, admin ports.DatabaseAdmin) *CreateExtensionStep {
	return &CreateExtensionStep{
		database:  database,
		extension: extension,
		id:        provision.MustNewStepID("database:extension:" + extension),
		admin:     admin,
	}
}

// ID returns the step identifier.
func (s *CreateExtensionStep) ID() provision.StepID {
	return s.id
}

// DependsOn returns the step dependencies.
func (s *CreateExtensionStep) DependsOn() []provision.StepID {
	return []provision.StepID{provision.MustNewStepID("database:create:" + s.database)}
}

// Check determines if the extension is already installed.
func (s *CreateExtensionStep) Check(ctx provision.RunContext) (provision.StepStatus, error) {
	exists, err := s.admin.ExtensionExists(ctx.Context(), s.database, s.extension)
	if err != nil {
		return provision.StatusUnknown, err
	}
	if exists {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// Apply installs the extension.
func (s *CreateExtensionStep) Apply(ctx provision.RunContext) error {
	if err := s.admin.CreateExtension(ctx.Context(), s.database, s.extension); err != nil {
		return fmt.Errorf("create extension %s: %w", s.extension, err)
	}
	ctx.SetOutput(s.id, fmt.Sprintf("installed extension %s in %s", s.extension, s.database))
	return nil
}

// Ensure the steps implement the provision.Step interface.
var (
	_ provision.Step = (*CreateDatabaseStep)(nil)
	_ provision.Step = (*CreateExtensionStep)(nil)
)
