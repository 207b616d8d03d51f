package ui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phin3has/argodash/internal/argocd"
)

func TestSettings_createRequiresFields(t *testing.T) {
	c := argocd.NewMockClient()
	m := newSettingsModel(newStyles(), c)
	m.setSize(100, 30)
	m, _ = m.Update(m.initCmd()())
	require.Len(t, m.items, 1)

	cmd := m.switchSection(sectionProjects)
	m, _ = m.Update(cmd())
	require.Len(t, m.items, 2)

	m, _ = m.Update(keyPress("n"))
	require.True(t, m.editing())
	require.Len(t, m.form, len(sectionProjects.fields()))

	// Walk to the last field without filling in the name.
	for range m.form {
		m, cmd = m.Update(keyPress("enter"))
	}
	assert.Nil(t, cmd)
	require.Error(t, m.err)
	assert.Equal(t, "name is required", m.err.Error())

	m.form[0].SetValue("team-a")
	m.form[2].SetValue("https://github.com/example/a, https://github.com/example/b")
	m, cmd = m.Update(keyPress("enter"))
	require.NotNil(t, cmd)
	m, cmd = m.Update(cmd())
	assert.False(t, m.editing())
	assert.Equal(t, "project created", m.status)
	require.NotNil(t, cmd, "a write reloads the section")

	projects, err := c.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, []string{"https://github.com/example/a", "https://github.com/example/b"}, projects[2].SourceRepos)
}

func TestSettings_deleteNeedsConfirmation(t *testing.T) {
	c := argocd.NewMockClient()
	m := newSettingsModel(newStyles(), c)
	m.setSize(100, 30)
	m, _ = m.Update(m.switchSection(sectionRepositories)())
	require.Len(t, m.items, 2)

	m, _ = m.Update(keyPress("delete"))
	m, cmd := m.Update(keyPress("n"))
	assert.Nil(t, cmd)
	assert.Equal(t, "delete cancelled", m.status)

	m, _ = m.Update(keyPress("delete"))
	require.True(t, m.confirmDelete)
	m, cmd = m.Update(keyPress("y"))
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	repos, err := c.ListRepositories(context.Background())
	require.NoError(t, err)
	assert.Len(t, repos, 1)
}

func TestSettings_staleSectionIgnored(t *testing.T) {
	m := newSettingsModel(newStyles(), argocd.NewMockClient())
	m, _ = m.Update(settingsLoadedMsg{section: sectionGPGKeys, items: []settingsItem{{cells: []string{"a", "b", "c", "d"}}}})
	assert.Empty(t, m.items)
	assert.True(t, m.loading)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Nil(t, splitList("  "))
}
