// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package openai implements the ai service interfaces against any
// OpenAI-compatible API (Ollama, LocalAI, vLLM, OpenAI itself).
//
// The embedder wraps langchaingo's embeddings client; the oracle drives a
// chat model in JSON mode with temperature 0 to pick among shortlisted
// candidates. Both are safe for concurrent use.
package openai
