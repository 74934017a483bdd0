package config_test

import (
	"os"
	"path/filepath"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mcpress/mcpress/pkg/config"
)

var _ = Describe("ParseConfigTOML", func() {
	It("applies defaults to an empty document", func() {
		cfg, err := config.ParseConfigTOML(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.API.Listen).To(Equal(":8080"))
		Expect(cfg.Reader.Provider).To(Equal("jina"))
		Expect(cfg.LLM.Model).To(Equal("llama-3.1-8b-instant"))
		Expect(cfg.Embedding.Dimensions).To(Equal(uint(1536)))
		Expect(cfg.VectorStore.Provider).To(Equal("sqlite"))
		Expect(cfg.Articles.Categories).To(ContainElement("news"))
	})

	It("keeps explicit values over defaults", func() {
		doc := []byte(`
[api]
listen = ":9090"

[vector_store]
provider = "chroma"
target = "http://localhost:8000"
`)
		cfg, err := config.ParseConfigTOML(doc)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.API.Listen).To(Equal(":9090"))
		Expect(cfg.VectorStore.Provider).To(Equal("chroma"))
		Expect(cfg.VectorStore.Target).To(Equal("http://localhost:8000"))
		Expect(cfg.LLM.Target).To(Equal("https://api.groq.com/openai/v1"))
	})

	It("rejects a config from a newer version", func() {
		_, err := config.ParseConfigTOML([]byte("version = 99\n"))
		Expect(err).To(MatchError(ContainSubstring("newer than supported")))
	})
})

var _ = Describe("Configer", func() {
	var (
		dir      string
		configer *config.Configer
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		configer = config.NewConfiger()
		configer.OverrideDir = dir
	})

	It("returns defaults when no file exists", func() {
		cfg, err := configer.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.API.Listen).To(Equal(":8080"))
	})

	It("round-trips through Save and Load", func() {
		cfg := config.NewDefaultConfig()
		cfg.API.Listen = ":7070"
		cfg.Events.Provider = "kafka"
		cfg.Events.Brokers = []string{"localhost:9092"}

		Expect(configer.Save(cfg)).To(Succeed())
		Expect(filepath.Join(dir, "config.toml")).To(BeAnExistingFile())

		loaded, err := configer.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.API.Listen).To(Equal(":7070"))
		Expect(loaded.Events.Provider).To(Equal("kafka"))
		Expect(loaded.Events.Brokers).To(Equal([]string{"localhost:9092"}))
	})

	It("surfaces unreadable TOML", func() {
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0o644)).To(Succeed())
		_, err := configer.Load()
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Config values", func() {
	It("gets and sets by dotted key", func() {
		cfg := config.NewDefaultConfig()

		Expect(config.SetConfigValue(cfg, "llm.model", "llama-3.3-70b-versatile")).To(Succeed())
		v, err := config.GetConfigValue(cfg, "llm.model")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal("llama-3.3-70b-versatile"))
	})

	It("parses numeric keys", func() {
		cfg := config.NewDefaultConfig()

		Expect(config.SetConfigValue(cfg, "embedding.dimensions", "768")).To(Succeed())
		Expect(cfg.Embedding.Dimensions).To(Equal(uint(768)))

		Expect(config.SetConfigValue(cfg, "search.similarity_threshold", "0.35")).To(Succeed())
		Expect(cfg.Search.SimilarityThreshold).To(BeNumerically("~", 0.35, 0.001))

		Expect(config.SetConfigValue(cfg, "embedding.dimensions", "lots")).NotTo(Succeed())
	})

	It("splits list keys on commas", func() {
		cfg := config.NewDefaultConfig()

		Expect(config.SetConfigValue(cfg, "articles.categories", "news, tech ,finance")).To(Succeed())
		Expect(cfg.Articles.Categories).To(Equal([]string{"news", "tech", "finance"}))
	})

	It("rejects unknown keys", func() {
		cfg := config.NewDefaultConfig()
		Expect(config.SetConfigValue(cfg, "nope.nope", "x")).To(MatchError(config.ErrUnknownKey))
		_, err := config.GetConfigValue(cfg, "nope.nope")
		Expect(err).To(MatchError(config.ErrUnknownKey))
	})

	It("lists keys sorted", func() {
		keys := config.ConfigKeys()
		Expect(keys).To(ContainElements("api.listen", "vector_store.provider", "events.topic"))
		Expect(sort.StringsAreSorted(keys)).To(BeTrue())
	})
})
