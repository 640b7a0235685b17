// Package locale decides which page languages to search and in which order.
package locale

import (
	"os"
	"strings"
)

// English is the language every page exists in.
const English = "en"

// Env is the subset of the environment used to detect preferred languages.
type Env struct {
	// Lang is $LANG. Detection is disabled when it is unset.
	Lang    string
	LangSet bool
	// Language is $LANGUAGE, a colon-separated preference list.
	Language string
}

// EnvFromOS reads LANG and LANGUAGE from the process environment.
func EnvFromOS() Env {
	lang, ok := os.LookupEnv("LANG")
	return Env{
		Lang:     lang,
		LangSet:  ok,
		Language: os.Getenv("LANGUAGE"),
	}
}

// Input carries every source of language preferences, highest priority first.
type Input struct {
	// Override holds languages given explicitly for this invocation.
	Override []string
	// Configured holds the languages from the config file.
	Configured []string
	// Env is consulted only when neither Override nor Configured is set.
	Env Env
}

// Resolution is the ordered list of languages to search.
type Resolution struct {
	Languages []string
	// Explicit is true when Languages came from an override. English is not
	// appended in that case and a failed lookup should say so.
	Explicit bool
}

// Resolve computes the language search order. Sources do not merge: the
// first non-empty source wins. English is appended last unless the languages
// were given explicitly.
func Resolve(in Input) Resolution {
	if langs := Dedup(in.Override); len(langs) > 0 {
		return Resolution{Languages: langs, Explicit: true}
	}

	var langs []string
	if len(in.Configured) > 0 {
		langs = append(langs, in.Configured...)
	} else {
		langs = append(langs, FromEnv(in.Env)...)
	}

	langs = append(langs, English)
	return Resolution{Languages: Dedup(langs)}
}

// FromEnv extracts page languages from LANGUAGE and LANG. LANGUAGE entries come
// first, LANG last. A tag of the form ll_CC yields both ll_CC and ll. Encoding
// and modifier suffixes ("UTF-8", "@euro") are dropped; tags that are neither
// ll nor ll_CC (C, POSIX) are ignored. Nothing is detected when LANG is unset.
func FromEnv(env Env) []string {
	if !env.LangSet {
		return nil
	}

	var tags []string
	for _, tag := range strings.Split(env.Language, ":") {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	tags = append(tags, env.Lang)

	var out []string
	for _, tag := range tags {
		out = append(out, expandTag(tag)...)
	}
	return Dedup(out)
}

// expandTag turns one locale tag into catalog language codes.
func expandTag(tag string) []string {
	if i := strings.IndexAny(tag, ".@"); i >= 0 {
		tag = tag[:i]
	}

	switch {
	case len(tag) >= 5 && tag[2] == '_':
		return []string{tag[:5], tag[:2]}
	case len(tag) == 2:
		return []string{tag}
	default:
		return nil
	}
}

// Dedup removes duplicates and empty entries, keeping the first occurrence.
func Dedup(langs []string) []string {
	seen := make(map[string]bool, len(langs))
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
