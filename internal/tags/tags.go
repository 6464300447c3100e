// Package tags derives topical labels from an offer's free text. Every
// category is computed independently from its own pattern table; categories
// never suppress one another. Identical input always yields an identical
// bundle — nothing here has state.
package tags

import (
	"regexp"
	"strings"
)

// Bundle is the full set of labels for one offer. Slices keep the order of
// the defining tables.
type Bundle struct {
	CoreRobotics bool
	Adjacent     []string
	Remote       bool
	Seniority    string
	Agency       bool
	PLC          []string
	Languages    []string
	Sensors      []string
	VisionLibs   []string
	RobotBrands  []string
	ROSStack     []string
}

type tagPattern struct {
	tag string
	re  *regexp.Regexp
}

var corePattern = regexp.MustCompile(`(?i)\b(ros2?|robot(?:ique|ics)?|move ?it2?|gazebo(?: sim| ignition)?|urdf|xacro|tf2|nav2|navigation2|rclcpp|rclpy|colcon|ament|pcl|slam|navigation|opencv|perception)\b`)

var adjacentTable = []tagPattern{
	{"automatisme", regexp.MustCompile(`(?i)\b(automatisme|automaticien|automatismes|plc|grafcet|tia|twincat)\b`)},
	{"vision_industrielle", regexp.MustCompile(`(?i)\b(vision industrielle|opencv|halcon)\b`)},
	{"maintenance_robot", regexp.MustCompile(`(?i)\b(maintenance).*(robot)|robot.*maintenance|\bSAV\b`)},
	{"ivvq_test", regexp.MustCompile(`(?i)\b(ivvq|validation|int[eé]gration|tests?)\b`)},
	{"cobot", regexp.MustCompile(`(?i)\b(cobot|collaboratif|ur\b|universal robots)\b`)},
	{"agv_amr", regexp.MustCompile(`(?i)\b(agv|amr|mobile robot)\b`)},
	{"machine_speciale", regexp.MustCompile(`(?i)\b(machine sp[eé]ciale|int[eé]gration (ligne|ilot)|ilot robotis[eé])\b`)},
}

var plcTable = []tagPattern{
	{"plc_siemens", regexp.MustCompile(`(?i)\b(siemens|tia ?portal)\b`)},
	{"plc_beckhoff", regexp.MustCompile(`(?i)\b(beckhoff|twincat)\b`)},
	{"plc_rockwell", regexp.MustCompile(`(?i)\b(rockwell|allen[- ]?bradley)\b`)},
}

// The bare "c" entry is deliberately case-sensitive (a capital C shows up in
// too many French words); the trailing group replaces a lookahead to keep
// "c++" from counting as plain C.
var langTable = []tagPattern{
	{"c++", regexp.MustCompile(`(?i)\bc\+\+|\bcpp\b`)},
	{"python", regexp.MustCompile(`(?i)\bpython\b`)},
	{"c", regexp.MustCompile(`\bc\b(?:$|[^+])`)},
	{"matlab", regexp.MustCompile(`(?i)\bmatlab\b`)},
}

var sensorTable = []tagPattern{
	{"lidar", regexp.MustCompile(`(?i)\blidar\b`)},
	{"camera", regexp.MustCompile(`(?i)\b(camera|cam[eé]ra|rgbd|rgb-d)\b`)},
	{"imu", regexp.MustCompile(`(?i)\bimu\b`)},
}

var visionLibTable = []tagPattern{
	{"opencv", regexp.MustCompile(`(?i)\bopencv\b`)},
	{"halcon", regexp.MustCompile(`(?i)\bhalcon\b`)},
	{"cognex", regexp.MustCompile(`(?i)\bcognex\b`)},
	{"keyence", regexp.MustCompile(`(?i)\bkeyence\b`)},
}

var robotBrandTable = []tagPattern{
	{"fanuc", regexp.MustCompile(`(?i)\bfanuc\b`)},
	{"abb", regexp.MustCompile(`(?i)\babb\b`)},
	{"kuka", regexp.MustCompile(`(?i)\bkuka\b`)},
	{"staubli", regexp.MustCompile(`(?i)\bst[äa]ubli\b`)},
	{"yaskawa", regexp.MustCompile(`(?i)\byaskawa\b`)},
	{"universal_robots", regexp.MustCompile(`(?i)\b(universal robots|ur\b)\b`)},
	{"omron", regexp.MustCompile(`(?i)\bomron\b`)},
	{"mir", regexp.MustCompile(`(?i)\b(mobile industrial robots|mir)\b`)},
	{"clearpath", regexp.MustCompile(`(?i)\bclearpath\b`)},
	{"doosan", regexp.MustCompile(`(?i)\bdoosan\b`)},
}

// rosStackTable: "ros1" must not fire on "ros 2"/"ros2"; RE2 has no
// lookahead, so that entry is handled by matchROS1 instead of a pattern.
var rosStackTable = []tagPattern{
	{"ros2", regexp.MustCompile(`(?i)\bros ?2\b|\bros2\b`)},
	{"ros1", nil},
	{"moveit", regexp.MustCompile(`(?i)\bmove ?it2?\b`)},
	{"gazebo", regexp.MustCompile(`(?i)\bgazebo(?: sim| ignition)?\b`)},
	{"nav2", regexp.MustCompile(`(?i)\bnav2|navigation2\b`)},
	{"tf2", regexp.MustCompile(`(?i)\btf2\b`)},
	{"urdf", regexp.MustCompile(`(?i)\burdf|xacro\b`)},
	{"pcl", regexp.MustCompile(`(?i)\bpcl\b`)},
	{"rclcpp", regexp.MustCompile(`(?i)\brclcpp\b`)},
	{"rclpy", regexp.MustCompile(`(?i)\brclpy\b`)},
	{"colcon", regexp.MustCompile(`(?i)\bcolcon\b`)},
	{"ament", regexp.MustCompile(`(?i)\bament\b`)},
}

var (
	rosWord    = regexp.MustCompile(`(?i)\bros\b`)
	rosTrail2  = regexp.MustCompile(`^\s?2`)
	remoteRE   = regexp.MustCompile(`(?i)\b(t[eé]l[eé]travail|remote|hybride)\b`)
	agencyRE   = regexp.MustCompile(`(?i)\b(cabinet|recrut|int[eé]rim|esn|ssii|agence)\b`)
	seniorityTable = []struct {
		label string
		re    *regexp.Regexp
	}{
		{"junior", regexp.MustCompile(`(?i)\b(junior|d[eé]butant)\b`)},
		{"1-3 ans", regexp.MustCompile(`(?i)\b(1 ?- ?3 ?ans|1\s*[àa]\s*3\s*ans)\b`)},
		{"3-5 ans", regexp.MustCompile(`(?i)\b(3 ?- ?5 ?ans|3\s*[àa]\s*5\s*ans)\b`)},
		{"5+ ans/senior", regexp.MustCompile(`(?i)\b(5\+?\s*ans|5\s*ans|senior|lead|expert)\b`)},
	}
)

// matchROS1 reports a standalone "ros" mention not followed by a 2.
func matchROS1(text string) bool {
	for _, loc := range rosWord.FindAllStringIndex(text, -1) {
		if !rosTrail2.MatchString(text[loc[1]:]) {
			return true
		}
	}
	return false
}

// matchAll collects every matching tag of a table, preserving table order.
func matchAll(table []tagPattern, text string) []string {
	var out []string
	for _, tp := range table {
		if tp.re == nil {
			if tp.tag == "ros1" && matchROS1(text) {
				out = append(out, tp.tag)
			}
			continue
		}
		if tp.re.MatchString(text) {
			out = append(out, tp.tag)
		}
	}
	return out
}

// Seniority is first-match-wins over an ordered list; "senior" text often
// co-occurs with numeric ranges, so the check order is part of the contract.
func Seniority(text string) string {
	for _, s := range seniorityTable {
		if s.re.MatchString(text) {
			return s.label
		}
	}
	return "unspecified"
}

// Agency checks the company field first (short-circuits), then the full text.
func Agency(company, text string) bool {
	if company != "" && agencyRE.MatchString(company) {
		return true
	}
	return agencyRE.MatchString(text)
}

// Compute builds the full label bundle from an offer's title, description
// and company.
func Compute(title, description, company string) Bundle {
	text := strings.Join([]string{title, description}, " ")
	return Bundle{
		CoreRobotics: corePattern.MatchString(text),
		Adjacent:     matchAll(adjacentTable, text),
		Remote:       remoteRE.MatchString(text),
		Seniority:    Seniority(text),
		Agency:       Agency(company, text),
		PLC:          matchAll(plcTable, text),
		Languages:    matchAll(langTable, text),
		Sensors:      matchAll(sensorTable, text),
		VisionLibs:   matchAll(visionLibTable, text),
		RobotBrands:  matchAll(robotBrandTable, text),
		ROSStack:     matchAll(rosStackTable, text),
	}
}

// Flat returns every textual tag of the bundle as one list, in category
// order, for delimited exports.
func (b Bundle) Flat() []string {
	var out []string
	if b.CoreRobotics {
		out = append(out, "core_robotics")
	}
	out = append(out, b.Adjacent...)
	if b.Remote {
		out = append(out, "remote")
	}
	if b.Seniority != "unspecified" {
		out = append(out, "seniority:"+b.Seniority)
	}
	if b.Agency {
		out = append(out, "agency")
	}
	out = append(out, b.PLC...)
	out = append(out, b.Languages...)
	out = append(out, b.Sensors...)
	out = append(out, b.VisionLibs...)
	out = append(out, b.RobotBrands...)
	out = append(out, b.ROSStack...)
	return out
}
