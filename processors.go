package main

import (
	"fmt"
	"os"
	"plugin"
	"reflect"
	"sort"

	"github.com/cert-lv/docflow/pdk"
)

var (
	// Loaded plugins
	plugins map[string]pdk.Processor

	// Configured processor nodes,
	// definition name -> node
	processors map[string]*node

	// Routed records counters
	stats = pdk.NewStats()
)

/*
 * Single configured processor
 */
type node struct {
	def       *pdk.Definition
	processor pdk.Processor
	context   *processContext
}

/*
 * Load processor plugins from a configured directory
 */
func loadPlugins() error {
	plugins = make(map[string]pdk.Processor)

	dir := config.Plugins + "/processors"

	files, err := pluginFiles(dir)
	if err != nil {
		return err
	}

	for _, name := range files {
		// Open a .so file to load the symbols
		plug, err := plugin.Open(dir + "/" + name)
		if err != nil {
			return fmt.Errorf("Can't open '%s': %s", name, err.Error())
		}

		// Look up the main plugin's symbol
		symPlugin, err := plug.Lookup("Plugin")
		if err != nil {
			return fmt.Errorf("Can't lookup symbol 'Plugin' in '%s': %s", name, err.Error())
		}

		// Get plugin name
		symName, err := plug.Lookup("Name")
		if err != nil {
			return fmt.Errorf("Can't lookup symbol 'Name' in '%s': %s", name, err.Error())
		}
		pName, ok := symName.(*string)
		if !ok {
			return fmt.Errorf("Unexpected plugin name type in '%s': %T, '*string' expected", name, symName)
		}

		// Get plugin version
		symVersion, err := plug.Lookup("Version")
		if err != nil {
			return fmt.Errorf("Can't lookup symbol 'Version' in '%s': %s", name, err.Error())
		}
		pVersion, ok := symVersion.(*string)
		if !ok {
			return fmt.Errorf("Unexpected plugin version type in '%s': %T, '*string' expected", name, symVersion)
		}

		// Assert that loaded symbol is of a desired type
		processor, ok := symPlugin.(pdk.Processor)
		if !ok {
			return fmt.Errorf("Invalid plugin's type of '%s': %T, all methods must be implemented", name, symPlugin)
		}

		plugins[*pName] = processor

		log.Info().
			Str("plugin", *pName).
			Msg("Plugin loaded, version " + *pVersion)
	}

	return nil
}

/*
 * List ".so" files of the plugins directory
 */
func pluginFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("Can't read from '%s' directory: %s", dir, err.Error())
	}

	files := []string{}

	for _, entry := range entries {
		// Skip non-plugin files
		name := entry.Name()
		if len(name) > 3 && name[len(name)-3:] == ".so" {
			files = append(files, name)
		}
	}

	return files, nil
}

/*
 * Setup processor nodes of the "processors" definitions directory
 */
func setupProcessors() error {
	processors = make(map[string]*node)

	files, err := definitionFiles(config.Definitions + "/processors")
	if err != nil {
		return err
	}

	for _, filename := range files {
		def := &pdk.Definition{}

		err := loadDefinition(filename, def)
		if err != nil {
			log.Error().Msgf("Can't load processor file '%s': %s", filename, err.Error())
			continue
		}

		if _, exists := processors[def.Name]; exists {
			log.Error().
				Str("processor", def.Name).
				Msg("Duplicate processor name")
			continue
		}

		// Use needed plugin
		processor, ok := plugins[def.Plugin]
		if !ok {
			log.Error().
				Str("processor", def.Name).
				Str("plugin", def.Plugin).
				Msg("No such plugin required by a processor")
			continue
		}

		// Clone interface to avoid pointers in "processors" to the same value
		clone := reflect.New(reflect.TypeOf(processor).Elem()).Interface().(pdk.Processor)

		n, err := newNode(def, clone, lookupService)
		if err != nil {
			log.Error().
				Str("processor", def.Name).
				Str("plugin", def.Plugin).
				Msg("Can't setup: " + err.Error())
			continue
		}

		processors[def.Name] = n

		log.Info().
			Str("processor", def.Name).
			Str("plugin", def.Plugin).
			Msg("Processor initialized")
	}

	return nil
}

/*
 * Initialize the processor and resolve its configuration
 */
func newNode(def *pdk.Definition, processor pdk.Processor, lookup func(string) (interface{}, error)) (*node, error) {
	def.Timeout = defaultTimeout(def.Timeout)

	processor.Init(&initContext{
		name: def.Name,
		log:  log.With().Str("processor", def.Name).Logger(),
	})

	if len(processor.Relationships()) == 0 {
		return nil, fmt.Errorf("Processor declares no relationships")
	}

	context, err := newProcessContext(def, processor.Descriptors(), lookup)
	if err != nil {
		return nil, err
	}

	return &node{
		def:       def,
		processor: processor,
		context:   context,
	}, nil
}

/*
 * Stop all the processors on exit
 */
func stopProcessors() {
	for name, n := range processors {
		err := n.processor.Stop()

		if err != nil {
			log.Error().
				Str("processor", name).
				Msg("Can't stop the processor: " + err.Error())
		} else {
			log.Debug().
				Str("processor", name).
				Msg("Processor stopped")
		}
	}
}

/*
 * Names of the configured processors in a stable order
 */
func processorNames() []string {
	names := make([]string, 0, len(processors))
	for name := range processors {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}
