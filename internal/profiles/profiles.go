// Package profiles holds the operator's named search presets: keyword
// categories, domains, and saved profiles composing both. An optional
// profiles.json in the data dir overrides the built-ins.
package profiles

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Category is a named, composable keyword bucket.
type Category struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Profile is a saved search preset.
type Profile struct {
	Domain             string   `json:"domain"`
	SelectedCategories []string `json:"selected_categories"`
	ExtraKeywords      []string `json:"extra_keywords"`
	Dept               string   `json:"dept"`
	DistanceKm         int      `json:"distance_km"`
	PublishedSinceDays int      `json:"published_since_days"`
	TopN               int      `json:"topn"`
	ExportFormat       string   `json:"export_format"`
	MinSalaryMonthly   *float64 `json:"min_salary_monthly"`
}

type fileSchema struct {
	Categories     []Category         `json:"categories"`
	Domains        []Category         `json:"domains"`
	DefaultProfile *Profile           `json:"default_profile"`
	Profiles       map[string]Profile `json:"profiles"`
}

// Set is the resolved profile configuration.
type Set struct {
	Categories     []Category
	Domains        []Category
	DefaultProfile *Profile
	Profiles       map[string]Profile
}

func builtinCategories() []Category {
	return []Category{
		{"Robotique / ROS", []string{"ros2", "ros", "robotique", "robot"}},
		{"Vision industrielle", []string{"vision", "opencv", "halcon", "cognex", "keyence"}},
		{"Navigation / SLAM", []string{"navigation", "slam", "path planning"}},
		{"ROS stack", []string{"moveit", "nav2", "gazebo", "urdf", "tf2", "pcl", "rclcpp", "rclpy", "colcon", "ament"}},
		{"Marques robots", []string{"fanuc", "abb", "kuka", "staubli", "yaskawa", "ur"}},
		{"Automatisme / PLC", []string{"automatisme", "plc", "grafcet", "siemens", "twincat"}},
		{"Capteurs", []string{"lidar", "camera", "imu"}},
		{"Langages", []string{"c++", "python"}},
		{"AGV / AMR / Mobile", []string{"agv", "amr", "mobile robot", "fleet manager"}},
		{"IVVQ / Validation / Test", []string{"ivvq", "validation", "intégration", "tests", "verification"}},
		{"Embarqué / Temps réel", []string{"embarqué", "temps réel", "rtos", "stm32", "microcontrôleur"}},
	}
}

func builtinDomains() []Category {
	return []Category{
		{"Custom (libre)", nil},
		{"Robotique (ROS/vision)", []string{"ros2", "ros", "robotique", "vision", "c++"}},
		{"Software (général)", []string{"python", "java", "javascript", "backend", "fullstack"}},
		{"Automatisme / PLC", []string{"automatisme", "plc", "siemens", "twincat", "grafcet"}},
	}
}

// Load reads profiles.json from the data dir, falling back to built-ins when
// the file is missing or unreadable (an invalid file must not break a run).
func Load(dataDir string) Set {
	s := Set{
		Categories: builtinCategories(),
		Domains:    builtinDomains(),
		Profiles:   map[string]Profile{},
	}

	path := os.Getenv("PROFILES_PATH")
	if path == "" {
		path = filepath.Join(dataDir, "profiles.json")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var f fileSchema
	if err := json.Unmarshal(b, &f); err != nil {
		return s
	}

	if len(f.Categories) > 0 {
		s.Categories = f.Categories
	}
	if len(f.Domains) > 0 {
		s.Domains = f.Domains
	}
	s.DefaultProfile = f.DefaultProfile
	if f.Profiles != nil {
		s.Profiles = f.Profiles
	}
	return s
}

// BuildKeywords composes the deduplicated keyword list of a profile from its
// selected categories plus extra keywords, preserving first-seen order.
func (s Set) BuildKeywords(p Profile) []string {
	byName := map[string][]string{}
	for _, c := range s.Categories {
		byName[c.Name] = c.Keywords
	}

	var kws []string
	for _, name := range p.SelectedCategories {
		kws = append(kws, byName[name]...)
	}
	for _, k := range p.ExtraKeywords {
		if k = strings.TrimSpace(k); k != "" {
			kws = append(kws, k)
		}
	}

	seen := map[string]bool{}
	out := make([]string, 0, len(kws))
	for _, k := range kws {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
