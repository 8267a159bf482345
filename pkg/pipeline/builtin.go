package pipeline

import "fmt"

// Toolchain channels of the built-in build matrix.
const (
	StableChannel  = "1.54"
	NightlyChannel = "nightly"
)

// FreeBSDImage is the VM image both matrix tasks run on.
const FreeBSDImage = "freebsd-13-0-release-amd64"

// FreeBSDTask builds the FreeBSD CI task for one toolchain channel. Both
// matrix variants come from this single constructor so they cannot drift
// apart structurally: everything except the task name and the channel
// argument is shared.
func FreeBSDTask(channel string) Task {
	return Task{
		Name:  fmt.Sprintf("rust %s on freebsd 13", channel),
		Image: FreeBSDImage,
		Setup: []string{
			"pkg install -y curl",
			"curl https://sh.rustup.rs -sSf --output rustup.sh",
			fmt.Sprintf("sh rustup.sh -y --profile minimal --default-toolchain %s", channel),
			". $HOME/.cargo/env && rustup component add clippy",
		},
		Test: []string{
			". $HOME/.cargo/env && cargo check",
			". $HOME/.cargo/env && cargo check --example simple",
			". $HOME/.cargo/env && cargo test",
			". $HOME/.cargo/env && cargo clippy -- -D warnings",
		},
	}
}

// BuildMatrix is the built-in pipeline: the stable and nightly toolchain
// tasks, independent of each other, both required for the pipeline to be
// green.
func BuildMatrix() *Spec {
	return &Spec{
		Name:        "freebsd-build-matrix",
		Description: "Build, test and lint on FreeBSD with the pinned and the nightly toolchain",
		Tasks: []Task{
			FreeBSDTask(StableChannel),
			FreeBSDTask(NightlyChannel),
		},
	}
}
