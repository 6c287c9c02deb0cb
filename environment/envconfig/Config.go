// Package envconfig provides configuration structs for configuring
// environments with default physical parameters and tasks. Environment
// configurations in this package are JSON serializable. Physics
// engines and rate/thrust controllers are external collaborators and
// are passed to Create by the caller.
package envconfig

import (
	"fmt"

	"github.com/samuelfneumann/gocopter/control"
	env "github.com/samuelfneumann/gocopter/environment"
	"github.com/samuelfneumann/gocopter/environment/crazyflie"
	"github.com/samuelfneumann/gocopter/physics"
	ts "github.com/samuelfneumann/gocopter/timestep"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	Crazyflie EnvName = "Crazyflie"
)

// TaskName stores the tasks that can be configured with this package.
// The tasks that can be used with each environment are as follows:
//
//	Environment			Task
//	Crazyflie			Hover
type TaskName string

// Tasks available for configuration
const (
	Hover TaskName = "Hover"
)

// Config implements a specific configuration of a specific environment
// and specific task
type Config struct {
	Environment      EnvName
	Task             TaskName
	NumEnvs          uint
	MaxEpisodeLength uint
	Discount         float64
	EnvSpacing       float64
	EnableDebugVis   bool
}

// NewConfig returns a new environment Config
func NewConfig(envName EnvName, taskName TaskName, numEnvs,
	maxEpisodeLength uint, discount, envSpacing float64,
	enableDebugVis bool) Config {
	return Config{
		Environment:      envName,
		Task:             taskName,
		NumEnvs:          numEnvs,
		MaxEpisodeLength: maxEpisodeLength,
		Discount:         discount,
		EnvSpacing:       envSpacing,
		EnableDebugVis:   enableDebugVis,
	}
}

// Create returns the environment described by the Config, as well as
// the first timestep of the environment. The engine and controller
// are supplied by the caller: the engine must simulate
// NumEnvs * crazyflie.BodiesPerEnv actors.
func (c Config) Create(seed uint64, engine physics.Engine,
	controller control.Controller) (env.Environment, ts.Batch, error) {
	switch c.Environment {
	case Crazyflie:
		return CreateCrazyflie(c.Task, c.NumEnvs, c.MaxEpisodeLength,
			c.Discount, c.EnvSpacing, c.EnableDebugVis, seed, engine,
			controller)
	}

	return nil, ts.Batch{}, fmt.Errorf("create: cannot create environment "+
		"%v, no such environment", c.Environment)
}

// CreateCrazyflie is a factory for creating the Crazyflie environment
// with default target distribution and task parameters
func CreateCrazyflie(taskName TaskName, numEnvs, maxEpisodeLength uint,
	discount, envSpacing float64, enableDebugVis bool, seed uint64,
	engine physics.Engine, controller control.Controller) (env.Environment,
	ts.Batch, error) {
	s := crazyflie.NewDefaultTargetStarter(seed)

	var task env.Task
	switch taskName {
	case Hover:
		task = crazyflie.NewHover(s, int(maxEpisodeLength))

	default:
		return nil, ts.Batch{}, fmt.Errorf("createCrazyflie: Crazyflie "+
			"environment has no task %v", taskName)
	}

	return crazyflie.New(task, engine, controller, int(numEnvs), discount,
		envSpacing, enableDebugVis)
}
