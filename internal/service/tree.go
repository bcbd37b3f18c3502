package service

import (
	"GophShare/internal/model"
	"GophShare/internal/repo"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxNameLength = 255
	// maxTreeDepth предел обхода: дальше считаем, что в данных цикл.
	maxTreeDepth = 1000
)

// Clock источник текущего времени.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// validateName обрезает пробелы и проверяет длину в code points.
func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%w: name longer than %d characters", ErrValidation, maxNameLength)
	}
	return name, nil
}

// FolderNode папка с раскрытыми дочерними папками.
type FolderNode struct {
	model.Folder
	Children []*FolderNode `json:"children,omitempty"`
}

// expand раскрывает поддеревья roots по уровням, один запрос на уровень.
// all содержит все узлы в порядке обхода в ширину: корни первыми.
func expand(ctx context.Context, folders repo.FolderRepository, roots []model.Folder) (nodes, all []*FolderNode, err error) {
	index := make(map[string]*FolderNode, len(roots))
	level := make([]string, 0, len(roots))
	for i := range roots {
		n := &FolderNode{Folder: roots[i]}
		nodes = append(nodes, n)
		all = append(all, n)
		index[n.ID] = n
		level = append(level, n.ID)
	}

	for depth := 0; len(level) > 0; depth++ {
		if depth > maxTreeDepth {
			return nil, nil, ErrCircularReference
		}
		children, err := folders.FindMany(ctx, repo.FolderFilter{ParentIDs: level}, "name ASC")
		if err != nil {
			return nil, nil, storeErr(err)
		}
		next := make([]string, 0, len(children))
		for i := range children {
			c := children[i]
			if _, seen := index[c.ID]; seen || c.ParentID == nil {
				continue
			}
			parent, ok := index[*c.ParentID]
			if !ok {
				continue
			}
			n := &FolderNode{Folder: c}
			parent.Children = append(parent.Children, n)
			index[c.ID] = n
			all = append(all, n)
			next = append(next, c.ID)
		}
		level = next
	}
	return nodes, all, nil
}

// walkUp поднимается по цепочке родителей от startID к корню.
// visit вызывается для каждой папки начиная со startID; true останавливает обход.
// Возвращает true, если обход остановил visit.
func walkUp(ctx context.Context, folders repo.FolderRepository, startID string, visit func(f *model.Folder) bool) (bool, error) {
	seen := make(map[string]struct{})
	id := startID
	for depth := 0; ; depth++ {
		if _, dup := seen[id]; dup || depth > maxTreeDepth {
			return false, ErrCircularReference
		}
		seen[id] = struct{}{}

		f, err := folders.GetByID(ctx, id)
		if err != nil {
			return false, storeErr(err)
		}
		if visit(f) {
			return true, nil
		}
		if f.ParentID == nil {
			return false, nil
		}
		id = *f.ParentID
	}
}

// folderSiblings фильтр соседей по родителю: nil, корневые папки владельца.
func folderSiblings(ownerID int64, parentID *string) repo.FolderFilter {
	if parentID == nil {
		return repo.FolderFilter{OwnerID: ownerID, RootsOnly: true}
	}
	return repo.FolderFilter{OwnerID: ownerID, ParentIDs: []string{*parentID}}
}

func fileSiblings(ownerID int64, folderID *string) repo.FileFilter {
	if folderID == nil {
		return repo.FileFilter{OwnerID: ownerID, Unfiled: true}
	}
	return repo.FileFilter{OwnerID: ownerID, FolderIDs: []string{*folderID}}
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ignoreNotFound превращает ErrNotFound в успех для идемпотентных удалений.
func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
