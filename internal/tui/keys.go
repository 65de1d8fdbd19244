// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	keepLocal   key.Binding
	keepRemote  key.Binding
	dismiss     key.Binding
	copy        key.Binding
	sync        key.Binding
	reconnect   key.Binding
	clearErrors key.Binding
	info        key.Binding
	help        key.Binding
	esc         key.Binding
	quit        key.Binding
}

var keys = keyMap{
	keepLocal:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "keep local")),
	keepRemote:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "keep remote")),
	dismiss:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dismiss")),
	copy:        key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
	sync:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sync now")),
	reconnect:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "reconnect")),
	clearErrors: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear errors")),
	info:        key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "about")),
	help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	esc:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.keepLocal, k.keepRemote, k.dismiss, k.help, k.quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.keepLocal, k.keepRemote, k.dismiss, k.copy},
		{k.sync, k.reconnect, k.clearErrors, k.info, k.help, k.quit},
	}
}
