package models

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"time"
)

// ImageEntry is one row of the image list
type ImageEntry struct {
	ID       string
	Name     string
	Path     string
	Buffer   *Buffer
	Icon     image.Image
	AddedAt  time.Time
	SourceID string // set for entries produced by a transform
}

// Info returns a short description used by the status bar
func (e *ImageEntry) Info() string {
	if e == nil || e.Buffer == nil {
		return "No image loaded"
	}
	return fmt.Sprintf("%s: %dx%d, %d channels", e.Name, e.Buffer.Width(), e.Buffer.Height(), e.Buffer.Channels())
}

// ImageList owns the opened and produced images and tracks the selection
type ImageList struct {
	mu       sync.RWMutex
	entries  []*ImageEntry
	selected int
	nextID   int
}

// NewImageList creates an empty image list with no selection
func NewImageList() *ImageList {
	return &ImageList{
		entries:  make([]*ImageEntry, 0),
		selected: -1,
	}
}

// Add appends an entry, assigns its ID and returns its index
func (l *ImageList) Add(entry *ImageEntry) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	entry.ID = fmt.Sprintf("img_%d", l.nextID)
	if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now()
	}
	if entry.Name == "" && entry.Path != "" {
		entry.Name = filepath.Base(entry.Path)
	}

	l.entries = append(l.entries, entry)
	return len(l.entries) - 1
}

// Get returns the entry at index, or nil when out of range
func (l *ImageList) Get(index int) *ImageEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < 0 || index >= len(l.entries) {
		return nil
	}
	return l.entries[index]
}

// Len returns the number of entries
func (l *ImageList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entries returns a snapshot of the entries
func (l *ImageList) Entries() []*ImageEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]*ImageEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Select marks index as the current selection
func (l *ImageList) Select(index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.entries) {
		return fmt.Errorf("image index %d out of range [0,%d)", index, len(l.entries))
	}
	l.selected = index
	return nil
}

// Selected returns the selected entry, or nil
func (l *ImageList) Selected() *ImageEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.selected < 0 || l.selected >= len(l.entries) {
		return nil
	}
	return l.entries[l.selected]
}

// SelectedIndex returns the selected index or -1
func (l *ImageList) SelectedIndex() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.selected
}

// Remove drops the entry at index and releases its buffer reference
func (l *ImageList) Remove(index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.entries) {
		return fmt.Errorf("image index %d out of range [0,%d)", index, len(l.entries))
	}

	l.entries[index].Buffer = nil
	l.entries = append(l.entries[:index], l.entries[index+1:]...)

	switch {
	case len(l.entries) == 0:
		l.selected = -1
	case l.selected == index:
		l.selected = min(index, len(l.entries)-1)
	case l.selected > index:
		l.selected--
	}
	return nil
}

// Clear removes every entry
func (l *ImageList) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entry := range l.entries {
		entry.Buffer = nil
	}
	l.entries = make([]*ImageEntry, 0)
	l.selected = -1
}

// Session is the file-open state carried between dialogs
type Session struct {
	mu      sync.RWMutex
	lastDir string
}

// NewSession creates a session starting in dir
func NewSession(dir string) *Session {
	return &Session{lastDir: dir}
}

// Remember stores the directory of a successfully opened path
func (s *Session) Remember(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDir = filepath.Dir(path)
}

// LastDir returns the directory of the last opened file
func (s *Session) LastDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastDir
}
