package agent

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/algopapi/RL-implementations/environment"
)

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes
	CreateAgent(env environment.Environment, seed uint64) (Agent, error)

	// ValidAgent returns whether the argument agent is valid for the
	// Config
	ValidAgent(Agent) bool

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error

	// Type returns the type of agent the Config creates
	Type() Type
}

// Type represents a specific type of an agent Config. Config's with
// this type can create Agents of the corresponding type.
type Type string

const (
	CategoricalPPOMLP Type = "CategoricalPPO-MLP"
)

// registeredTypes maps each registered Type to its concrete Config.
//
// Each agent package registers its own Type to avoid circular imports.
var registeredTypes = make(map[Type]reflect.Type)

// Register registers the concrete type of config with the package so
// that a TypedConfig of type t can be unmarshalled
func Register(t Type, config Config) {
	registeredTypes[t] = reflect.TypeOf(config)
}

// TypedConfig wraps a Config so that it can be JSON marshalled and
// unmarshalled into its underlying concrete type. It marshals to
// {"Type": ..., "Config": {...}}.
type TypedConfig struct {
	Type
	Config
}

// NewTypedConfig returns a TypedConfig wrapping c
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (t *TypedConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   Type
		Config json.RawMessage
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshalJSON: %v", err)
	}

	ty, found := registeredTypes[raw.Type]
	if !found {
		return fmt.Errorf("unmarshalJSON: agent type %q not registered",
			raw.Type)
	}

	// Concrete configs are registered as values or pointers
	var value reflect.Value
	if ty.Kind() == reflect.Ptr {
		value = reflect.New(ty.Elem())
	} else {
		value = reflect.New(ty)
	}

	if len(raw.Config) > 0 && string(raw.Config) != "null" {
		if err := json.Unmarshal(raw.Config, value.Interface()); err != nil {
			return fmt.Errorf("unmarshalJSON: %v", err)
		}
	}

	if ty.Kind() != reflect.Ptr {
		value = value.Elem()
	}
	config, ok := value.Interface().(Config)
	if !ok {
		return fmt.Errorf("unmarshalJSON: registered type %v is not a "+
			"Config", ty)
	}

	t.Type = raw.Type
	t.Config = config
	return nil
}
