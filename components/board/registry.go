package board

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/chipurobo/rdk/logging"
	"github.com/chipurobo/rdk/utils"
)

// A Constructor builds a board of one model from its raw attributes.
type Constructor func(
	ctx context.Context,
	name string,
	attributes utils.AttributeMap,
	logger logging.Logger,
) (Board, error)

// Registration describes how to build a board model.
type Registration struct {
	Constructor Constructor
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Registration{}
)

// RegisterModel registers a board model. It panics when the model is registered twice or has no
// constructor, since both are programming errors caught at init time.
func RegisterModel(model string, reg Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[model]; ok {
		panic(errors.Errorf("trying to register two board models with the same name %q", model))
	}
	if reg.Constructor == nil {
		panic(errors.Errorf("cannot register board model %q with a nil constructor", model))
	}
	registry[model] = reg
}

// LookupModel returns the registration for a model, if any.
func LookupModel(model string) (Registration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	reg, ok := registry[model]
	return reg, ok
}

// RegisteredModels returns the names of all registered models in sorted order.
func RegisteredModels() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	models := lo.Keys(registry)
	sort.Strings(models)
	return models
}

// New builds a board of the given model.
func New(
	ctx context.Context,
	model, name string,
	attributes utils.AttributeMap,
	logger logging.Logger,
) (Board, error) {
	reg, ok := LookupModel(model)
	if !ok {
		return nil, utils.NewUnknownModelError("board", model)
	}
	b, err := reg.Constructor(ctx, name, attributes, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot build %s board %q", model, name)
	}
	return b, nil
}
