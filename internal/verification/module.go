package verification

import (
	"github.com/campusconnect/loginflow/internal/pkg/config"
	"github.com/campusconnect/loginflow/internal/pkg/goroutine"
	"github.com/campusconnect/loginflow/internal/pkg/instrument"
	"github.com/campusconnect/loginflow/internal/pkg/uid"
	"github.com/campusconnect/loginflow/internal/pkg/validator"
	"github.com/campusconnect/loginflow/internal/verification/outbound/api"
	"github.com/campusconnect/loginflow/internal/verification/usecase"
)

type Dependency struct {
	Goroutine  *goroutine.Manager         `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	collab := api.NewClient(
		dep.Config.GetString("api.base_url"),
		dep.Config.GetSecond("api.timeout_seconds"),
		dep.Instrument,
	)

	return usecase.New(usecase.Dependency{
		Collaborator: collab,
		Validator:    dep.Validator,
		Config:       dep.Config,
		UUID:         dep.UUID,
		Instrument:   dep.Instrument,
		Goroutine:    dep.Goroutine,
	}), nil
}
