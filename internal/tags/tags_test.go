package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCategoriesAreIndependent(t *testing.T) {
	b := Compute(
		"Ingénieur ROS2 (H/F)",
		"Programmation d'automates Siemens TIA Portal, intégration robot FANUC, caméra et lidar.",
		"",
	)

	// A core-robotics hit never suppresses the adjacent/PLC labels.
	assert.True(t, b.CoreRobotics)
	assert.Contains(t, b.Adjacent, "automatisme")
	assert.Contains(t, b.PLC, "plc_siemens")
	assert.Contains(t, b.RobotBrands, "fanuc")
	assert.Contains(t, b.Sensors, "camera")
	assert.Contains(t, b.Sensors, "lidar")
	assert.Contains(t, b.ROSStack, "ros2")
}

func TestComputeDeterministic(t *testing.T) {
	a := Compute("Ingénieur vision", "OpenCV, Python, télétravail partiel", "ESN Grand Est")
	b := Compute("Ingénieur vision", "OpenCV, Python, télétravail partiel", "ESN Grand Est")
	assert.Equal(t, a, b)
}

func TestROSVersionSplit(t *testing.T) {
	ros2 := Compute("Développeur ROS 2", "migration de noeuds vers ros2", "")
	assert.Contains(t, ros2.ROSStack, "ros2")
	assert.NotContains(t, ros2.ROSStack, "ros1")

	ros1 := Compute("Développeur ROS", "stack de navigation ros existante", "")
	assert.Contains(t, ros1.ROSStack, "ros1")
	assert.NotContains(t, ros1.ROSStack, "ros2")
}

func TestLanguages(t *testing.T) {
	b := Compute("", "développement c++ et python", "")
	assert.Contains(t, b.Languages, "c++")
	assert.Contains(t, b.Languages, "python")
	// "c++" must not also count as plain C.
	assert.NotContains(t, b.Languages, "c")

	b = Compute("", "développement en c embarqué", "")
	assert.Contains(t, b.Languages, "c")
}

func TestSeniorityFirstMatchWins(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"profil junior accepté", "junior"},
		{"débutant bienvenu", "junior"},
		{"3 à 5 ans d'expérience, profil senior apprécié", "3-5 ans"},
		{"1 à 3 ans d'expérience", "1-3 ans"},
		{"profil senior confirmé", "5+ ans/senior"},
		{"aucune mention", "unspecified"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Seniority(tt.text), tt.text)
	}
}

func TestAgencyCompanyFirst(t *testing.T) {
	assert.True(t, Agency("Adecco Recrutement", ""))
	assert.True(t, Agency("", "poste en intérim longue durée"))
	assert.False(t, Agency("Robotique Alsace", "CDI au sein du bureau d'études"))
}

func TestRemote(t *testing.T) {
	assert.True(t, Compute("", "télétravail 2 jours par semaine", "").Remote)
	assert.True(t, Compute("", "poste hybride", "").Remote)
	assert.False(t, Compute("", "présentiel uniquement", "").Remote)
}

func TestFlat(t *testing.T) {
	b := Compute("Ingénieur ROS2", "C++ et OpenCV, télétravail possible", "")
	flat := b.Flat()
	require.NotEmpty(t, flat)
	assert.Contains(t, flat, "core_robotics")
	assert.Contains(t, flat, "remote")
	assert.Contains(t, flat, "c++")
	assert.Contains(t, flat, "opencv")
	assert.NotContains(t, flat, "seniority:unspecified")
}
