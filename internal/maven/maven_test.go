package maven

import (
	"archive/zip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getlawrence/qmaid/internal/domain"
)

type recorder struct {
	entries []domain.AnalysisFailure
}

func (r *recorder) Add(subject, description string) {
	r.entries = append(r.entries, domain.AnalysisFailure{Subject: subject, Description: description})
}

func (r *recorder) subjects() []string {
	var out []string
	for _, e := range r.entries {
		out = append(out, e.Subject)
	}
	return out
}

func coord(s string) domain.Coordinate {
	c, _ := domain.ParseCoordinate(s)
	return c
}

func writePom(t *testing.T, root, gav, body string) {
	t.Helper()
	c := coord(gav)
	path := filepath.Join(root, RelativePath(c, "pom"))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	content := fmt.Sprintf(`<project><groupId>%s</groupId><artifactId>%s</artifactId><version>%s</version>%s</project>`,
		c.GroupID, c.ArtifactID, c.Version, body)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeJar(t *testing.T, path string, entries ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e)
		require.NoError(t, err)
		_, _ = w.Write([]byte("x"))
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func deps(list ...string) string {
	var b strings.Builder
	b.WriteString("<dependencies>")
	for _, d := range list {
		b.WriteString("<dependency>" + d + "</dependency>")
	}
	b.WriteString("</dependencies>")
	return b.String()
}

func dep(gav string, extra ...string) string {
	c := coord(gav)
	s := "<groupId>" + c.GroupID + "</groupId><artifactId>" + c.ArtifactID + "</artifactId>"
	if c.Version != "" {
		s += "<version>" + c.Version + "</version>"
	}
	return s + strings.Join(extra, "")
}

func TestParseModel(t *testing.T) {
	m, err := ParseModel([]byte(`<project>
  <parent><groupId>org.springframework.boot</groupId><artifactId>spring-boot-starter-parent</artifactId><version>2.3.0</version></parent>
  <artifactId>demo</artifactId>
  <properties><java.version> 11 </java.version></properties>
</project>`))
	require.NoError(t, err)
	assert.Equal(t, "org.springframework.boot:demo:2.3.0", m.Identifier())
	assert.Equal(t, "11", m.JavaVersion())

	m, err = ParseModel([]byte(`<project><artifactId>x</artifactId></project>`))
	require.NoError(t, err)
	assert.Equal(t, ProjectNameUnavailable, m.Identifier())
	assert.Equal(t, "undefined", m.JavaVersion())
}

func TestEffectiveModel_ParentPropertiesAndBOM(t *testing.T) {
	repo := t.TempDir()
	writePom(t, repo, "com.acme:acme-parent:1.0", `
<properties><lib.version>2.5</lib.version></properties>
<dependencyManagement><dependencies>
  <dependency>`+dep("com.acme:bom:3.0", "<type>pom</type><scope>import</scope>")+`</dependency>
  <dependency>`+dep("org.lib:lib:${lib.version}")+`</dependency>
</dependencies></dependencyManagement>`)
	writePom(t, repo, "com.acme:bom:3.0", `
<dependencyManagement><dependencies>
  <dependency>`+dep("org.other:other:9.1")+`</dependency>
</dependencies></dependencyManagement>`)

	project := filepath.Join(t.TempDir(), "pom.xml")
	require.NoError(t, os.WriteFile(project, []byte(`<project>
  <parent><groupId>com.acme</groupId><artifactId>acme-parent</artifactId><version>1.0</version></parent>
  <artifactId>app</artifactId>
  <version>${revision}</version>
  <properties><revision>7</revision></properties>
  `+deps(dep("org.lib:lib"), dep("org.other:other"), dep("org.none:none"))+`
</project>`), 0o644))

	r, err := NewRepository(repo, 16)
	require.NoError(t, err)
	m, err := r.EffectiveModel(context.Background(), project)
	require.NoError(t, err)

	assert.Equal(t, "com.acme:app:7", m.Identifier())
	require.Len(t, m.Dependencies, 3)
	assert.Equal(t, "2.5", m.Dependencies[0].Version)
	assert.Equal(t, "9.1", m.Dependencies[1].Version)
	assert.Equal(t, "", m.Dependencies[2].Version)
}

func TestEffectiveModel_MissingParent(t *testing.T) {
	project := filepath.Join(t.TempDir(), "pom.xml")
	require.NoError(t, os.WriteFile(project, []byte(`<project>
  <parent><groupId>g</groupId><artifactId>missing</artifactId><version>1</version></parent>
  <artifactId>app</artifactId>
</project>`), 0o644))

	r, err := NewRepository(t.TempDir(), 16)
	require.NoError(t, err)
	_, err = r.EffectiveModel(context.Background(), project)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTreeBuilder_Build(t *testing.T) {
	repo := t.TempDir()
	writePom(t, repo, "org.a:a:1", deps(
		dep("org.b:b:1"),
		dep("org.c:c:1", "<optional>true</optional>"),
		dep("org.d:d:1", "<scope>test</scope>"),
		dep("org.e:e:1", "<exclusions><exclusion><groupId>org.x</groupId><artifactId>*</artifactId></exclusion></exclusions>"),
	))
	writePom(t, repo, "org.b:b:1", deps(dep("org.e:e:2")))
	writePom(t, repo, "org.e:e:1", deps(dep("org.x:x:1")))

	project := &Model{Dependencies: []Dependency{
		{GroupID: "org.a", ArtifactID: "a", Version: "1"},
		{GroupID: "org.t", ArtifactID: "t", Version: "1", Scope: "test"},
		{GroupID: "org.nov", ArtifactID: "nov"},
		{GroupID: "org.gone", ArtifactID: "gone", Version: "1"},
	}}

	r, err := NewRepository(repo, 16)
	require.NoError(t, err)
	failures := &recorder{}
	roots, err := NewTreeBuilder(r, failures, nil).Build(context.Background(), project)
	require.NoError(t, err)

	require.Len(t, roots, 1)
	a := roots[0]
	require.Len(t, a.Children, 2)
	assert.Equal(t, "org.b:b:1", a.Children[0].Coordinate.String())
	// nearest declaration of org.e:e wins over the one below org.b
	assert.Equal(t, "org.e:e:1", a.Children[1].Coordinate.String())
	assert.Empty(t, a.Children[0].Children)
	// org.x is excluded below org.e
	assert.Empty(t, a.Children[1].Children)

	assert.Equal(t, []string{"org.nov:nov", "org.gone:gone:1"}, failures.subjects())
	assert.Equal(t, FailureVersionUnknown, failures.entries[0].Description)
	assert.Equal(t, FailureUnresolvable, failures.entries[1].Description)
}

func TestCollectArtifacts(t *testing.T) {
	repo := t.TempDir()
	r, err := NewRepository(repo, 16)
	require.NoError(t, err)

	writeJar(t, r.Path(coord("org.a:a:1"), "jar"), "org/a/A.class")
	writeJar(t, r.Path(coord("org.c:c:1"), "jar"), "org/c/C.class")

	tree := &domain.DependencyNode{
		Coordinate: coord("org.a:a:1"),
		Children: []*domain.DependencyNode{
			{Coordinate: coord("org.b:b:1"), Children: []*domain.DependencyNode{{Coordinate: coord("org.c:c:1")}}},
			{Coordinate: coord("org.c:c:1")},
		},
	}
	second := &domain.DependencyNode{Coordinate: coord("org.z:z:1")}

	failures := &recorder{}
	artifacts := r.CollectArtifacts(context.Background(), []*domain.DependencyNode{tree, second}, failures)

	var got []string
	for _, a := range artifacts {
		got = append(got, a.Coordinate.String())
	}
	assert.Equal(t, []string{"org.a:a:1", "org.c:c:1", "org.z:z:1"}, got)
	assert.Equal(t, []string{"org.b:b:1", "org.z:z:1"}, failures.subjects())
	assert.Empty(t, artifacts[2].File)
}

func TestIndexJar(t *testing.T) {
	jar := filepath.Join(t.TempDir(), "lib.jar")
	writeJar(t, jar,
		"META-INF/MANIFEST.MF",
		"org/lib/core/Api.class",
		"org/lib/core/Api$Inner.class",
		"org/lib/core/Impl.class",
		"org/lib/util/Strings.class",
		"shaded/com/google/Thing.class",
	)

	d := domain.NewProjectDependency(coord("org.lib:lib:1"))
	require.NoError(t, IndexJar(d, jar))
	assert.Equal(t, []string{"org.lib.core.Api", "org.lib.core.Impl", "org.lib.util.Strings"}, d.Classes)
	assert.Equal(t, []string{"org.lib.core", "org.lib.util"}, d.Packages)

	broken := filepath.Join(t.TempDir(), "broken.jar")
	require.NoError(t, os.WriteFile(broken, []byte("not a zip"), 0o644))
	failures := &recorder{}
	out := IndexArtifacts([]domain.Artifact{{Coordinate: coord("org.lib:lib:1"), File: broken}}, failures)
	require.Len(t, out, 1)
	assert.Empty(t, out[0].Classes)
	assert.Equal(t, FailureJarUnreadable, failures.entries[0].Description)
}

func TestRepository_DownloadsMissingJar(t *testing.T) {
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		if r.URL.Path == "/maven2/org/a/a/1/a-1.jar" {
			_, _ = w.Write([]byte("jar"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	r, err := NewRepository(t.TempDir(), 16, WithRemote(NewRemote([]string{srv.URL + "/maven2"}, 0, srv.Client())))
	require.NoError(t, err)

	path, err := r.Jar(context.Background(), coord("org.a:a:1"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jar", string(data))

	_, err = r.Jar(context.Background(), coord("org.b:b:1"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"/maven2/org/a/a/1/a-1.jar", "/maven2/org/b/b/1/b-1.jar"}, requested)

	// second lookup is served locally
	_, err = r.Jar(context.Background(), coord("org.a:a:1"))
	require.NoError(t, err)
	assert.Len(t, requested, 2)
}

func TestRepository_OfflineMissing(t *testing.T) {
	r, err := NewRepository(t.TempDir(), 16)
	require.NoError(t, err)
	_, err = r.Jar(context.Background(), coord("org.a:a:1"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewRepository(filepath.Join(t.TempDir(), "nope"), 16)
	assert.Error(t, err)
}

func TestEffectiveModel_ParentCycle(t *testing.T) {
	repo := t.TempDir()
	writePom(t, repo, "org.a:a:1", `<parent><groupId>org.b</groupId><artifactId>b</artifactId><version>1</version></parent>`)
	writePom(t, repo, "org.b:b:1", `<parent><groupId>org.a</groupId><artifactId>a</artifactId><version>1</version></parent>`)

	r, err := NewRepository(repo, 16)
	require.NoError(t, err)
	_, err = r.EffectiveModelOf(context.Background(), coord("org.a:a:1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle in parent hierarchy")
}

func TestEffectiveModel_BOMCycleIsSkipped(t *testing.T) {
	repo := t.TempDir()
	writePom(t, repo, "org.a:bom-a:1", `
<dependencyManagement><dependencies>
  <dependency>`+dep("org.b:bom-b:1", "<type>pom</type><scope>import</scope>")+`</dependency>
  <dependency>`+dep("org.x:x:1.0")+`</dependency>
</dependencies></dependencyManagement>`)
	writePom(t, repo, "org.b:bom-b:1", `
<dependencyManagement><dependencies>
  <dependency>`+dep("org.a:bom-a:1", "<type>pom</type><scope>import</scope>")+`</dependency>
  <dependency>`+dep("org.y:y:2.0")+`</dependency>
</dependencies></dependencyManagement>`)

	r, err := NewRepository(repo, 16)
	require.NoError(t, err)
	m, err := r.EffectiveModelOf(context.Background(), coord("org.a:bom-a:1"))
	require.NoError(t, err)

	x, ok := m.ManagedVersion("org.x:x")
	assert.True(t, ok)
	assert.Equal(t, "1.0", x)
	y, ok := m.ManagedVersion("org.y:y")
	assert.True(t, ok)
	assert.Equal(t, "2.0", y)
}

func TestRemote_FallsBackAcrossRepositories(t *testing.T) {
	var (
		mu        sync.Mutex
		requested []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.Path)
		mu.Unlock()
		switch {
		case strings.HasPrefix(r.URL.Path, "/broken/"):
			http.Error(w, "boom", http.StatusInternalServerError)
		case r.URL.Path == "/mirror/org/a/a/1/a-1.jar":
			_, _ = w.Write([]byte("jar"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	remote := NewRemote([]string{srv.URL + "/central", srv.URL + "/broken/", "", srv.URL + "/mirror"}, 0, srv.Client())
	dest := filepath.Join(t.TempDir(), "a-1.jar")
	require.NoError(t, remote.Fetch(context.Background(), "org/a/a/1/a-1.jar", dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "jar", string(data))

	mu.Lock()
	assert.Equal(t, []string{"/central/org/a/a/1/a-1.jar", "/broken/org/a/a/1/a-1.jar", "/mirror/org/a/a/1/a-1.jar"}, requested)
	mu.Unlock()

	// a server error is reported instead of ErrNotFound
	err = remote.Fetch(context.Background(), "org/b/b/1/b-1.jar", filepath.Join(t.TempDir(), "b-1.jar"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	err = NewRemote([]string{srv.URL + "/central"}, 0, srv.Client()).Fetch(context.Background(), "org/b/b/1/b-1.jar", filepath.Join(t.TempDir(), "b-1.jar"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemote_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	// 20 requests per second with a burst of one
	remote := NewRemote([]string{srv.URL}, 20, srv.Client())
	dir := t.TempDir()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, remote.Fetch(context.Background(), fmt.Sprintf("f%d.jar", i), filepath.Join(dir, fmt.Sprintf("f%d.jar", i))))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := remote.Fetch(ctx, "f9.jar", filepath.Join(dir, "f9.jar"))
	assert.ErrorIs(t, err, context.Canceled)
}
