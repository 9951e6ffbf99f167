package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProgramRoles(t *testing.T) {
	roles := ParseProgramRoles("medicare:preparer,centrelink:viewer")

	assert.Equal(t, []AgencyUserProgramRole{
		{Program: "medicare", Role: "preparer"},
		{Program: "centrelink", Role: "viewer"},
	}, roles)
}

func TestParseProgramRoles_Empty(t *testing.T) {
	assert.Nil(t, ParseProgramRoles(""))
}

func TestParseProgramRoles_MissingRoleHalf(t *testing.T) {
	roles := ParseProgramRoles("medicare,centrelink:viewer")

	assert.Equal(t, []AgencyUserProgramRole{
		{Program: "medicare", Role: ""},
		{Program: "centrelink", Role: "viewer"},
	}, roles)
}

func TestAgencyUserHasRoleForProgram(t *testing.T) {
	u := &AgencyUser{
		ID: "agency-1",
		ProgramRoles: []AgencyUserProgramRole{
			{Program: "medicare", Role: "preparer"},
		},
	}

	assert.True(t, u.HasRoleForProgram("medicare", "preparer"))
	assert.False(t, u.HasRoleForProgram("medicare", "viewer"))
	assert.False(t, u.HasRoleForProgram("centrelink", "preparer"))

	var nilUser *AgencyUser
	assert.False(t, nilUser.HasRoleForProgram("medicare", "preparer"))
}

func TestJoinName(t *testing.T) {
	assert.Equal(t, "Jo Lee", JoinName("Jo", "Lee"))
	assert.Equal(t, "Jo", JoinName("Jo", ""))
	assert.Equal(t, "Lee", JoinName("", "Lee"))
	assert.Equal(t, "", JoinName("", ""))
}
