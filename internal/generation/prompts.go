// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package generation

const systemPrompt = `You are a world builder for a text adventure. You answer with a single JSON object and nothing else.`

const locationsPrompt = `The room below has become overcrowded with connections. Replace it with between 2 and 5 smaller rooms that together cover the same place and keep its mood.

Each new room needs:
- "id": a short, unique, lower-case kebab-case identifier (letters, digits, hyphens), different from every id listed in the input
- "title": a short title
- "description": two or three sentences of description

Respond with {"new_locations": [{"id": ..., "title": ..., "description": ...}, ...]}.

Room:
`

const internalPrompt = `The rooms below were carved out of one original room. Decide how they connect to each other. Every room must connect to at least one other room and it must be possible to walk from any room to any other using only these connections. Only use the ids given.

Respond with {"internal_connections": {"<room id>": ["<connected room id>", ...], ...}}.

Original room and new rooms:
`

const distributionPrompt = `The rooms below replace one original room. The original room had the connections listed under "connections"; each leads to a neighbouring room described by remote_title. Assign every connection to exactly one of the new rooms, choosing the room that makes the most sense for that neighbour. Every connection id must appear exactly once. Only use the new room ids given.

Respond with {"connection_assignments": {"<connection id>": "<new room id>", ...}}.

Input:
`
