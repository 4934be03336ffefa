// SPDX-License-Identifier: MPL-2.0

// Package fspath provides pure path transforms over types.FilesystemPath.
// Functions here never touch the filesystem except ConfinedJoin, which
// resolves symlinks below its root.
package fspath

import (
	"fmt"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/ovfconv/ovfconv/pkg/types"
)

// Join wraps filepath.Join for FilesystemPath.
func Join(elem ...types.FilesystemPath) types.FilesystemPath {
	strs := make([]string, len(elem))
	for i, e := range elem {
		strs[i] = string(e)
	}
	return types.FilesystemPath(filepath.Join(strs...))
}

// Dir wraps filepath.Dir for FilesystemPath.
func Dir(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Dir(string(p)))
}

// Abs wraps filepath.Abs for FilesystemPath.
func Abs(p types.FilesystemPath) (types.FilesystemPath, error) {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return types.FilesystemPath(abs), nil
}

// ReplaceExt swaps the final extension of p for ext. ext must include its
// leading dot (".mf", ".zfs.bz2"); an empty ext strips the extension.
// A path without an extension gets ext appended. Directory components are
// kept as-is, and a leading dot in the base name (".hidden") is not treated
// as an extension.
//
//	ReplaceExt("disk1.vmdk", ".zfs.bz2")    == "disk1.zfs.bz2"
//	ReplaceExt("img/disk1", ".zfs.bz2")     == "img/disk1.zfs.bz2"
//	ReplaceExt("/exports/vm.ovf", ".mf")    == "/exports/vm.mf"
func ReplaceExt(p types.FilesystemPath, ext string) types.FilesystemPath {
	s := string(p)
	base := s[strings.LastIndexAny(s, `/\`)+1:]
	old := filepath.Ext(base)
	if old == base {
		old = ""
	}
	return types.FilesystemPath(s[:len(s)-len(old)] + ext)
}

// IsLocal reports whether rel stays inside the directory it is joined to.
// It uses slash-separated semantics so hrefs written on one platform
// are judged the same way on every platform.
func IsLocal(rel string) bool {
	return filepath.IsLocal(filepath.FromSlash(rel))
}

// ConfinedJoin joins the slash-separated relative path rel onto root and
// guarantees the result stays within root, even when rel contains ".."
// components, is absolute, or traverses symlinks.
func ConfinedJoin(root types.FilesystemPath, rel string) (types.FilesystemPath, error) {
	joined, err := securejoin.SecureJoin(string(root), filepath.FromSlash(rel))
	if err != nil {
		return "", fmt.Errorf("joining %q under %s: %w", rel, root, err)
	}
	return types.FilesystemPath(joined), nil
}
