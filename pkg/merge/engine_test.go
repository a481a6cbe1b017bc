package merge

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/archivemaster/archivemaster/pkg/reader"
	"github.com/archivemaster/archivemaster/pkg/reader/rar"
	"github.com/archivemaster/archivemaster/pkg/types"
)

func TestMerge(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Merge Engine Suite")
}

var rarHeader = []byte{0x52, 0x61, 0x72, 0x21, 0x1a, 0x07, 0x00}

// writeZip creates a zip fixture with the given name to content mapping. A
// trailing slash marks a directory entry. Entries are written in the order
// given.
func writeZip(path string, entries [][2]string) {
	f, err := os.Create(path)
	Expect(err).ToNot(HaveOccurred())
	defer f.Close()
	zw := zip.NewWriter(f)
	for _, e := range entries {
		name, content := e[0], e[1]
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Now()}
		if name[len(name)-1] == '/' {
			hdr.SetMode(os.ModeDir | 0755)
			hdr.Method = zip.Store
			_, err := zw.CreateHeader(hdr)
			Expect(err).ToNot(HaveOccurred())
			continue
		}
		hdr.SetMode(0644)
		w, err := zw.CreateHeader(hdr)
		Expect(err).ToNot(HaveOccurred())
		_, err = w.Write([]byte(content))
		Expect(err).ToNot(HaveOccurred())
	}
	Expect(zw.Close()).To(Succeed())
}

// readZipContents re-enumerates a zip output into a path to content map.
func readZipContents(path string) map[string]string {
	zr, err := zip.OpenReader(path)
	Expect(err).ToNot(HaveOccurred())
	defer zr.Close()
	out := map[string]string{}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			out[f.Name] = ""
			continue
		}
		rc, err := f.Open()
		Expect(err).ToNot(HaveOccurred())
		data, err := ioutil.ReadAll(rc)
		rc.Close()
		Expect(err).ToNot(HaveOccurred())
		out[f.Name] = string(data)
	}
	return out
}

var _ = Describe("MergeEngine", func() {

	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = ioutil.TempDir("", "")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() { os.RemoveAll(tmpDir) })

	newJob := func(format types.OutputFormat, inputs ...string) *types.ArchiveJob {
		return &types.ArchiveJob{
			Inputs: inputs,
			Output: filepath.Join(tmpDir, "combined."+string(format)),
			Format: format,
			Level:  6,
		}
	}

	Describe("Merging archives with colliding entry names", func() {

		var job *types.ArchiveJob
		var sink *MockSink
		var summary *types.OutputSummary
		var err error

		JustBeforeEach(func() {
			a := filepath.Join(tmpDir, "a.zip")
			b := filepath.Join(tmpDir, "b.zip")
			writeZip(a, [][2]string{
				{"docs/", ""},
				{"docs/a.txt", "alpha"},
				{"x.txt", "from-a"},
			})
			writeZip(b, [][2]string{
				{"docs/", ""},
				{"docs/b.txt", "beta"},
				{"x.txt", "from-b"},
			})
			job = newJob(types.FormatZip, a, b)
			sink = &MockSink{}
			summary, err = New().Run(job, sink)
		})

		It("Should keep both colliding entries with distinct names", func() {
			Expect(err).ToNot(HaveOccurred())
			contents := readZipContents(job.Output)
			Expect(contents).To(HaveKeyWithValue("x.txt", "from-b"))
			Expect(contents).To(HaveKeyWithValue("x__from_1.txt", "from-a"))
		})

		It("Should deduplicate shared directories", func() {
			Expect(err).ToNot(HaveOccurred())
			contents := readZipContents(job.Output)
			Expect(contents).To(HaveKey("docs/"))
			Expect(contents).To(HaveLen(5))
		})

		It("Should process every planned entry", func() {
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.EntriesWritten).To(Equal(uint64(5)))
			state := sink.EventsOfType(types.EventCompleted)[0].State
			Expect(state.ProcessedEntries).To(Equal(state.TotalEntries))
		})

		It("Should report the output checksum and size", func() {
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.SHA256).To(HaveLen(64))
			stat, statErr := os.Stat(job.Output)
			Expect(statErr).ToNot(HaveOccurred())
			Expect(summary.OutputSize).To(Equal(stat.Size()))
		})
	})

	Describe("Merging mixed formats including a rar set", func() {

		var backend types.RarExtractor

		BeforeEach(func() {
			backend = reader.RarBackend
			reader.RarBackend = rar.Mock(
				rar.MockEntry{Path: "r.txt", Content: "from-rar"},
			)
		})

		AfterEach(func() { reader.RarBackend = backend })

		It("Should include entries from every logical archive", func() {
			a := filepath.Join(tmpDir, "a.zip")
			writeZip(a, [][2]string{{"z.txt", "from-zip"}})
			r := filepath.Join(tmpDir, "b.part1.rar")
			Expect(ioutil.WriteFile(r, rarHeader, 0644)).To(Succeed())
			Expect(ioutil.WriteFile(filepath.Join(tmpDir, "b.part2.rar"), rarHeader, 0644)).To(Succeed())

			job := newJob(types.FormatZip, a, r)
			summary, err := New().Run(job, &MockSink{})
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.EntriesWritten).To(Equal(uint64(2)))

			contents := readZipContents(job.Output)
			Expect(contents).To(HaveKeyWithValue("z.txt", "from-zip"))
			Expect(contents).To(HaveKeyWithValue("r.txt", "from-rar"))
		})
	})

	Describe("Round-tripping contents into a tar output", func() {

		It("Should preserve every entry's path and bytes in plan order", func() {
			a := filepath.Join(tmpDir, "a.zip")
			b := filepath.Join(tmpDir, "b.zip")
			writeZip(a, [][2]string{{"one.txt", "first"}, {"two.txt", "second"}})
			writeZip(b, [][2]string{{"three.txt", "third"}})

			job := newJob(types.FormatTarGz, a, b)
			_, err := New().Run(job, &MockSink{})
			Expect(err).ToNot(HaveOccurred())

			rdr, err := reader.Open(job.Output)
			Expect(err).ToNot(HaveOccurred())
			defer rdr.Close()

			var paths []string
			contents := map[string]string{}
			for {
				entry, err := rdr.Next()
				if err == io.EOF {
					break
				}
				Expect(err).ToNot(HaveOccurred())
				paths = append(paths, entry.Path)
				data, err := ioutil.ReadAll(entry.Body)
				Expect(err).ToNot(HaveOccurred())
				contents[entry.Path] = string(data)
			}
			Expect(paths).To(Equal([]string{"one.txt", "two.txt", "three.txt"}))
			Expect(contents).To(Equal(map[string]string{
				"one.txt": "first", "two.txt": "second", "three.txt": "third",
			}))
		})
	})

	Describe("Cancelling a running job", func() {

		It("Should stop between entries and leave no output behind", func() {
			a := filepath.Join(tmpDir, "a.zip")
			writeZip(a, [][2]string{
				{"1.txt", "one"}, {"2.txt", "two"}, {"3.txt", "three"}, {"4.txt", "four"},
			})
			job := newJob(types.FormatZip, a)

			sink := &cancellingSink{after: 2, handleCh: make(chan types.JobHandle, 1)}
			handle := New().Submit(job, sink)
			sink.handleCh <- handle

			summary, err := handle.Wait()
			Expect(errors.Is(err, types.ErrCancelled)).To(BeTrue())
			Expect(summary).To(BeNil())

			state := handle.Poll()
			Expect(state.Cancelled).To(BeTrue())
			Expect(state.ProcessedEntries).To(Equal(uint64(2)))

			cancelled := sink.EventsOfType(types.EventCancelled)
			Expect(cancelled).To(HaveLen(1))
			Expect(cancelled[0].State.ProcessedEntries).To(Equal(uint64(2)))

			_, statErr := os.Stat(job.Output)
			Expect(os.IsNotExist(statErr)).To(BeTrue())
			leftovers, globErr := filepath.Glob(job.Output + "*")
			Expect(globErr).ToNot(HaveOccurred())
			Expect(leftovers).To(BeEmpty())
		})
	})

	Describe("Clamping an out-of-range compression level", func() {

		It("Should clamp rather than fail and report the level used", func() {
			a := filepath.Join(tmpDir, "a.zip")
			writeZip(a, [][2]string{{"f.txt", "data"}})
			job := newJob(types.FormatZip, a)
			job.Level = 42

			summary, err := New().Run(job, &MockSink{})
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.EffectiveLevel).To(Equal(types.MaxCompressionLevel))
		})
	})

	Describe("Submitting an invalid job", func() {

		It("Should reject a job with no inputs", func() {
			job := &types.ArchiveJob{Output: filepath.Join(tmpDir, "out.zip"), Format: types.FormatZip}
			sink := &MockSink{}
			_, err := New().Run(job, sink)
			Expect(errors.Is(err, types.ErrInvalidJob)).To(BeTrue())
			Expect(sink.EventsOfType(types.EventFailed)).To(HaveLen(1))
		})

		It("Should reject an incompatible format and compression pair", func() {
			a := filepath.Join(tmpDir, "a.zip")
			writeZip(a, [][2]string{{"f.txt", "data"}})
			job := newJob(types.FormatZip, a)
			job.Compression = types.CompressionBzip2
			_, err := New().Run(job, &MockSink{})
			Expect(errors.Is(err, types.ErrInvalidJob)).To(BeTrue())
		})
	})

	Describe("Handling unreadable inputs", func() {

		It("Should skip a bad input with a warning and merge the rest", func() {
			bad := filepath.Join(tmpDir, "bad.bin")
			Expect(ioutil.WriteFile(bad, []byte("not an archive at all"), 0644)).To(Succeed())
			good := filepath.Join(tmpDir, "good.zip")
			writeZip(good, [][2]string{{"ok.txt", "fine"}})

			job := newJob(types.FormatZip, bad, good)
			sink := &MockSink{}
			summary, err := New().Run(job, sink)
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.EntriesWritten).To(Equal(uint64(1)))
			Expect(summary.Warnings).To(Equal(1))

			warnings := sink.EventsOfType(types.EventWarning)
			Expect(warnings).To(HaveLen(1))
			Expect(errors.Is(warnings[0].Warning.Err, types.ErrUnsupportedFormat)).To(BeTrue())
		})

		It("Should fail when no usable inputs remain", func() {
			bad := filepath.Join(tmpDir, "bad.bin")
			Expect(ioutil.WriteFile(bad, []byte("not an archive at all"), 0644)).To(Succeed())
			job := newJob(types.FormatZip, bad)
			sink := &MockSink{}
			_, err := New().Run(job, sink)
			Expect(errors.Is(err, types.ErrNoUsableInputs)).To(BeTrue())
			Expect(sink.EventsOfType(types.EventFailed)).To(HaveLen(1))
			_, statErr := os.Stat(job.Output)
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})
	})

	Describe("Carrying symlinks across container formats", func() {

		It("Should preserve a tar symlink in a zip output", func() {
			src := filepath.Join(tmpDir, "links.tar")
			f, err := os.Create(src)
			Expect(err).ToNot(HaveOccurred())
			tw := tar.NewWriter(f)
			Expect(tw.WriteHeader(&tar.Header{
				Name: "real.txt", Typeflag: tar.TypeReg, Mode: 0644, Size: 4, ModTime: time.Now(),
			})).To(Succeed())
			_, err = tw.Write([]byte("real"))
			Expect(err).ToNot(HaveOccurred())
			Expect(tw.WriteHeader(&tar.Header{
				Name: "alias", Typeflag: tar.TypeSymlink, Linkname: "real.txt", Mode: 0777, ModTime: time.Now(),
			})).To(Succeed())
			Expect(tw.Close()).To(Succeed())
			Expect(f.Close()).To(Succeed())

			job := newJob(types.FormatZip, src)
			sink := &MockSink{}
			summary, err := New().Run(job, sink)
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.EntriesWritten).To(Equal(uint64(2)))
			Expect(summary.Warnings).To(Equal(0))

			rdr, err := reader.Open(job.Output)
			Expect(err).ToNot(HaveOccurred())
			defer rdr.Close()
			byPath := map[string]*types.ArchiveEntry{}
			for {
				entry, err := rdr.Next()
				if err == io.EOF {
					break
				}
				Expect(err).ToNot(HaveOccurred())
				if entry.Body != nil {
					ioutil.ReadAll(entry.Body)
				}
				byPath[entry.Path] = entry
			}
			Expect(byPath).To(HaveKey("alias"))
			Expect(byPath["alias"].IsSymlink).To(BeTrue())
			Expect(byPath["alias"].LinkTarget).To(Equal("real.txt"))
		})
	})

	Describe("Merging an input that carries a collision-styled name", func() {

		It("Should never assign the same output path twice", func() {
			a := filepath.Join(tmpDir, "a.zip")
			b := filepath.Join(tmpDir, "b.zip")
			writeZip(a, [][2]string{{"x.txt", "from-a"}})
			writeZip(b, [][2]string{
				{"x.txt", "from-b"},
				{"x__from_1.txt", "literal"},
			})

			job := newJob(types.FormatZip, a, b)
			summary, err := New().Run(job, &MockSink{})
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.EntriesWritten).To(Equal(uint64(3)))

			zr, err := zip.OpenReader(job.Output)
			Expect(err).ToNot(HaveOccurred())
			defer zr.Close()
			seen := map[string]int{}
			for _, f := range zr.File {
				seen[f.Name]++
			}
			for name, count := range seen {
				Expect(count).To(Equal(1), "duplicate output path %q", name)
			}

			contents := readZipContents(job.Output)
			Expect(contents).To(HaveKeyWithValue("x.txt", "from-b"))
			Expect(contents).To(HaveKeyWithValue("x__from_1.txt", "literal"))
			Expect(contents).To(HaveKeyWithValue("x__from_1_2.txt", "from-a"))
		})
	})
})

// cancellingSink cancels its job's handle after a fixed number of processed
// entries. The engine polls the cancellation flag right after notifying each
// entry, so the cut point is deterministic.
type cancellingSink struct {
	MockSink
	after    int
	count    int
	handleCh chan types.JobHandle
	handle   types.JobHandle
}

func (s *cancellingSink) Notify(event *types.Event) {
	s.MockSink.Notify(event)
	if event.Type != types.EventEntryProcessed {
		return
	}
	if s.handle == nil {
		s.handle = <-s.handleCh
	}
	s.count++
	if s.count == s.after {
		s.handle.Cancel()
	}
}
