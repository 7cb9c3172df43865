// Package internal contains the implementation packages of the easypaper
// LaTeX backend.
//
// # Package Organization
//
//   - api: operation registry, parameter decoding and the response envelope
//   - build: engine strategies, the per-project compile gate and statistics
//   - config: settings of the tool itself, loaded through viper
//   - diagnostics: error and warning extraction from engine output and logs
//   - errors: typed application errors with codes and install hints
//   - fileaccess: project file operations (list, read, write, rename)
//   - logging: slog backed structured logger
//   - process: subprocess runner and its test double
//   - project: the per-project .easypaper/project.yml file
//   - scaffolding: starter templates and project creation
//   - server: HTTP and WebSocket bridge to the UI
//   - synctex: forward and inverse search through the synctex tool
//   - version: build information injected at link time
//   - watcher: debounced file watching and rebuild on change
//   - websocket: client tracking and broadcast for the bridge
//
// # Request Flow
//
// Every operation, whether it arrives from the command line, POST /api or a
// WebSocket frame, goes through api.Registry.Invoke and comes back as the same
// {ok, data, error} envelope. The watcher calls the build package directly and
// the server pushes the result to connected clients as a build_finished event.
package internal
