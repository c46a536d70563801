/*
 * RTM - The transaction manifest language and resource engine
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package manifest

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/parser"
)

// CompilerConfig contains the configuration options of a compiler.
type CompilerConfig struct {
	Parser parser.Config
	// CacheSize is the maximum number of compiled manifests which are retained.
	// If set to 0, a default size is used. If negative, no cache is used
	CacheSize int
}

const defaultCacheSize = 1024

// Compiler compiles manifest source to manifests.
//
// Compiled manifests are cached by the hash of their source,
// and must not be modified by callers.
// The compiler is safe for concurrent use.
type Compiler struct {
	config CompilerConfig
	cache  *lru.Cache[common.Hash, *ast.Manifest]
}

func NewCompiler(config CompilerConfig) (*Compiler, error) {
	if config.CacheSize == 0 {
		config.CacheSize = defaultCacheSize
	}

	var cache *lru.Cache[common.Hash, *ast.Manifest]
	if config.CacheSize > 0 {
		var err error
		cache, err = lru.New[common.Hash, *ast.Manifest](config.CacheSize)
		if err != nil {
			return nil, err
		}
	}

	return &Compiler{
		config: config,
		cache:  cache,
	}, nil
}

// Compile parses the source. Failed compilations are not cached.
func (c *Compiler) Compile(code []byte) (*ast.Manifest, error) {
	if c.cache == nil {
		return parser.ParseManifest(code, c.config.Parser)
	}

	hash := common.HashOf(code)

	manifest, ok := c.cache.Get(hash)
	if ok {
		return manifest, nil
	}

	manifest, err := parser.ParseManifest(code, c.config.Parser)
	if err != nil {
		return nil, err
	}

	c.cache.Add(hash, manifest)
	return manifest, nil
}

// Cached returns the number of cached manifests.
func (c *Compiler) Cached() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}
