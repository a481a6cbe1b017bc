package util

import (
	"io"
	"io/ioutil"
	"os"
	"path"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestUtils(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Utils Suite")
}

var _ = Describe("Utils", func() {

	// GetTempDir()
	Describe("Get Temp Directory", func() {

		var (
			cwd    string
			tmpDir string
			err    error
		)

		JustBeforeEach(func() {
			tmpDir, err = GetTempDir()
			Expect(err).ToNot(HaveOccurred())
			os.RemoveAll(tmpDir)
		})

		Context("When configured to the default", func() {
			It("Should return a directory under the system default", func() {
				Expect(path.Dir(tmpDir)).To(Equal(os.TempDir()))
			})
		})

		// This test assumes current directory is writable
		Context("When overwritten with a custom path", func() {
			BeforeEach(func() {
				cwd, err = os.Getwd()
				Expect(err).ToNot(HaveOccurred())
				TempDir = cwd
			})
			AfterEach(func() { TempDir = os.TempDir() })
			It("Should return a temp directory under the custom path", func() {
				Expect(path.Dir(tmpDir)).To(Equal(cwd))
			})
		})

	})

	// CalculateSHA256Sum
	Describe("Calculating SHA256 Sums", func() {
		var (
			shaSum string
			err    error
			body   io.ReadCloser
		)

		const (
			helloWorldSha = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
		)

		JustBeforeEach(func() {
			shaSum, err = CalculateSHA256Sum(body)
		})

		Context("When passed the value 'hello world'", func() {
			BeforeEach(func() {
				body = ioutil.NopCloser(strings.NewReader("hello world"))
			})
			It("Should return the correct checksum", func() {
				Expect(err).ToNot(HaveOccurred())
				Expect(shaSum).To(Equal(helloWorldSha))
			})
		})

		Context("When passed a closed io.Reader", func() {
			BeforeEach(func() {
				body, _, err = os.Pipe()
				Expect(err).ToNot(HaveOccurred())
				body.Close()
			})
			It("Should return an error", func() {
				Expect(err).To(HaveOccurred())
			})
		})
	})

	// GenerateToken
	Describe("Generating Unique Tokens", func() {
		var (
			length int
			token  string
		)
		JustBeforeEach(func() { token = GenerateToken(length) })
		Context("When told to generate an 8 character token", func() {
			BeforeEach(func() { length = 8 })
			It("should return a token with 8 characters", func() {
				Expect(len(token)).To(Equal(8))
			})
		})
		Context("When told to generate a 128 character token", func() {
			BeforeEach(func() { length = 128 })
			It("should return a token with 128 characters", func() {
				Expect(len(token)).To(Equal(128))
			})
		})
	})

	// ByteCountSI
	Describe("Rendering byte counts", func() {
		It("Should render small counts in bytes", func() {
			Expect(ByteCountSI(512)).To(Equal("512 B"))
		})
		It("Should render larger counts in SI units", func() {
			Expect(ByteCountSI(1500)).To(Equal("1.5 kB"))
			Expect(ByteCountSI(2500000)).To(Equal("2.5 MB"))
		})
	})
})
