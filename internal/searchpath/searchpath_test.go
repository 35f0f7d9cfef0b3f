package searchpath

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFindTagsFileAbove(t *testing.T) {
	root := t.TempDir()
	tagsPath := filepath.Join(root, "tags")
	writeFile(t, tagsPath, "")
	source := filepath.Join(root, "a", "b", "c", "main.go")
	writeFile(t, source, "package main\n")

	// Three directories below the index, nothing in between.
	found, err := FindTagsFileAbove(source, "tags")
	if err != nil {
		t.Fatal(err)
	}
	if found != tagsPath {
		t.Errorf("found = %q, want %q", found, tagsPath)
	}
}

func TestFindTagsFileAboveSkipsDirectories(t *testing.T) {
	root := t.TempDir()
	// A directory named like the tag file must not count.
	if err := os.MkdirAll(filepath.Join(root, "a", "tags"), 0755); err != nil {
		t.Fatal(err)
	}
	tagsPath := filepath.Join(root, "tags")
	writeFile(t, tagsPath, "")
	source := filepath.Join(root, "a", "main.go")
	writeFile(t, source, "")

	found, err := FindTagsFileAbove(source, "tags")
	if err != nil {
		t.Fatal(err)
	}
	if found != tagsPath {
		t.Errorf("found = %q, want %q", found, tagsPath)
	}
}

func TestFindTagsFileAboveFromDirectory(t *testing.T) {
	root := t.TempDir()
	tagsPath := filepath.Join(root, "tags")
	writeFile(t, tagsPath, "")

	// Starting from the directory itself, its own index wins; the walk
	// must not begin at the parent.
	found, err := FindTagsFileAbove(root, "tags")
	if err != nil {
		t.Fatal(err)
	}
	if found != tagsPath {
		t.Errorf("found = %q, want %q", found, tagsPath)
	}
}

func TestFindTagsFileAboveNotFound(t *testing.T) {
	source := filepath.Join(t.TempDir(), "src", "main.go")
	writeFile(t, source, "")

	if _, err := FindTagsFileAbove(source, "no-such-tags-name-xyzzy"); !errors.Is(err, ErrNoIndexFound) {
		t.Fatalf("err = %v, want ErrNoIndexFound", err)
	}
	if _, err := FindTagsFileAbove("", "tags"); !errors.Is(err, ErrNoIndexFound) {
		t.Fatalf("empty source err = %v, want ErrNoIndexFound", err)
	}
}

func TestResolveMergesAuxAndExtras(t *testing.T) {
	root := t.TempDir()
	tagsPath := filepath.Join(root, "tags")
	writeFile(t, tagsPath, "")

	auxTarget := filepath.Join(root, "elsewhere", "tags")
	writeFile(t, auxTarget, "")
	missing := filepath.Join(root, "gone", "tags")
	writeFile(t, tagsPath+"_search_paths", auxTarget+"\n"+missing+"\n\n")

	extra := filepath.Join(root, "extra_tags")
	writeFile(t, extra, "")

	source := filepath.Join(root, "src", "main.py")
	writeFile(t, source, "")

	got, err := Resolve(source, Options{
		TagFile:       "tags",
		ExtraTagFiles: []string{"extra_tags"},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{tagsPath, auxTarget, extra}
	if len(got) != len(want) {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Resolve = %v, want %v", got, want)
		}
	}
}

func TestResolveFallsBackToProjectFolders(t *testing.T) {
	project := t.TempDir()
	folderTags := filepath.Join(project, "tags")
	writeFile(t, folderTags, "")

	// Source lives outside the project tree with no index above it.
	source := filepath.Join(t.TempDir(), "main.py")
	writeFile(t, source, "")

	got, err := Resolve(source, Options{
		TagFile:        "no-such-tags-name-xyzzy",
		ProjectFolders: []string{project},
	})
	if !errors.Is(err, ErrNoIndexFound) {
		t.Fatalf("err = %v, want ErrNoIndexFound (folder holds a differently named index)", err)
	}

	got, err = Resolve(source, Options{
		TagFile:        "tags",
		ProjectFolders: []string{project},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != folderTags {
		t.Fatalf("Resolve = %v, want [%s]", got, folderTags)
	}
}

func TestResolveNoIndexAnywhere(t *testing.T) {
	source := filepath.Join(t.TempDir(), "main.py")
	writeFile(t, source, "")

	if _, err := Resolve(source, Options{TagFile: "no-such-tags-name-xyzzy"}); !errors.Is(err, ErrNoIndexFound) {
		t.Fatalf("err = %v, want ErrNoIndexFound", err)
	}
}

func TestResolveDeduplicates(t *testing.T) {
	root := t.TempDir()
	tagsPath := filepath.Join(root, "tags")
	writeFile(t, tagsPath, "")
	writeFile(t, tagsPath+"_search_paths", tagsPath+"\n")
	source := filepath.Join(root, "main.py")
	writeFile(t, source, "")

	got, err := Resolve(source, Options{TagFile: "tags"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("Resolve = %v, want single deduplicated path", got)
	}
}

func TestFindTopFolder(t *testing.T) {
	sep := string(filepath.Separator)
	join := func(parts ...string) string {
		return sep + filepath.Join(parts...)
	}

	tests := []struct {
		name     string
		folders  []string
		filename string
		want     string
	}{
		{
			name:     "no folders open",
			folders:  nil,
			filename: join("home", "me", "proj", "pkg", "a.py"),
			want:     join("home", "me", "proj", "pkg"),
		},
		{
			name:     "stops at project folder",
			folders:  []string{join("home", "me", "proj")},
			filename: join("home", "me", "proj", "pkg", "sub", "a.py"),
			want:     join("home", "me", "proj"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindTopFolder(tt.folders, tt.filename); got != tt.want {
				t.Errorf("FindTopFolder = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilesToSearch(t *testing.T) {
	sep := string(filepath.Separator)
	tagsFile := sep + filepath.Join("proj", "tags")
	fileName := sep + filepath.Join("proj", "pkg", "mod.py")

	got := FilesToSearch(fileName, tagsFile, false)
	if len(got) != 1 || got[0] != filepath.Join("pkg", "mod.py") {
		t.Errorf("FilesToSearch = %v, want [pkg%smod.py]", got, sep)
	}

	if got := FilesToSearch(fileName, tagsFile, true); got != nil {
		t.Errorf("multi FilesToSearch = %v, want nil", got)
	}
}

func TestCommonFolder(t *testing.T) {
	sep := string(filepath.Separator)
	join := func(parts ...string) string {
		return sep + filepath.Join(parts...)
	}

	tests := []struct {
		paths []string
		want  string
	}{
		{[]string{join("a", "b", "c"), join("a", "b", "d")}, join("a", "b")},
		{[]string{join("a", "b"), join("a", "b")}, join("a", "b")},
		{[]string{join("a"), join("z")}, ""},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := CommonFolder(tt.paths); got != tt.want {
			t.Errorf("CommonFolder(%v) = %q, want %q", tt.paths, got, tt.want)
		}
	}
}
