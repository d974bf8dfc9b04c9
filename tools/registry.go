package tools

import (
	"fmt"

	"pantryfinder"
	"pantryfinder/pantry"
)

// Registry maps tool names to implementations
type Registry map[string]Tool

// NewRegistry creates the standard tool set for one deployment: pantry and
// shopping-list reads plus recipe discovery.
func NewRegistry(loader *pantry.ContextLoader, finder pantryfinder.RecipeFinder) (*Registry, error) {
	tools := map[string]Tool{
		"pantry_get":    NewPantryGet(loader),
		"shopping_get":  NewShoppingGet(loader),
		"recipe_search": NewRecipeSearch(finder),
	}

	registry := Registry(tools)
	return &registry, nil
}

// GetTools returns all tools in the registry as a slice
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(*r))
	for _, tool := range *r {
		tools = append(tools, tool)
	}
	return tools
}

// GetTool retrieves a tool by name from the registry
func (r Registry) GetTool(name string) (Tool, error) {
	tool, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("tool %q not found in registry", name)
	}
	return tool, nil
}
