package nutrition

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/foodlens/meal-vision/internal/core/domain"
)

//go:embed backup.yaml
var backupTableYAML []byte

type backupFacts struct {
	Calories float64 `yaml:"calories"`
	Protein  float64 `yaml:"protein"`
	Carbs    float64 `yaml:"carbs"`
	Fat      float64 `yaml:"fat"`
	Fiber    float64 `yaml:"fiber"`
	Sugar    float64 `yaml:"sugar"`
	Sodium   float64 `yaml:"sodium"`
}

var (
	backupTable map[string]domain.NutritionFacts
	backupKeys  []string
)

func init() {
	raw := map[string]backupFacts{}
	if err := yaml.Unmarshal(backupTableYAML, &raw); err != nil {
		panic(fmt.Sprintf("nutrition: parse embedded backup table: %v", err))
	}

	backupTable = make(map[string]domain.NutritionFacts, len(raw))
	backupKeys = make([]string, 0, len(raw))
	for name, f := range raw {
		key := strings.ToLower(strings.TrimSpace(name))
		backupTable[key] = domain.NutritionFacts{
			Calories: f.Calories,
			Protein:  f.Protein,
			Carbs:    f.Carbs,
			Fat:      f.Fat,
			Fiber:    f.Fiber,
			Sugar:    f.Sugar,
			Sodium:   f.Sodium,
		}
		backupKeys = append(backupKeys, key)
	}
	// Keys are matched in sorted order so lookups stay deterministic.
	sort.Strings(backupKeys)
}

// LookupBackup matches a food name against the backup table by bidirectional
// substring containment. Values are per 100g.
func LookupBackup(name string) (domain.NutritionFacts, bool) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return domain.NutritionFacts{}, false
	}
	for _, key := range backupKeys {
		if strings.Contains(query, key) || strings.Contains(key, query) {
			return backupTable[key], true
		}
	}
	return domain.NutritionFacts{}, false
}
