package cli

import (
	"fmt"
	"io"
)

func Help(program string, stdout io.Writer) {
	Version(stdout)
	fmt.Fprintf(stdout, "Usage: \"%s [-Options...] FileName1 [Filename2...]\"\n", program)
	fmt.Fprintln(stdout, "")
	fmt.Fprintln(stdout, "Files ending in .yaml or .yml are read as reference manifests and every")
	fmt.Fprintln(stdout, "sequence they list is merged into one report.")
	fmt.Fprintln(stdout, "")
	fmt.Fprintln(stdout, "Options:")
	fmt.Fprintln(stdout, "--Help, -h")
	fmt.Fprintln(stdout, "                    Display this help and exit")
	fmt.Fprintln(stdout, "--Version")
	fmt.Fprintln(stdout, "                    Display version information and exit")
	fmt.Fprintln(stdout, "--Help-Output")
	fmt.Fprintln(stdout, "                    Display help for Output= option")
	fmt.Fprintln(stdout, "--Help-Manifest")
	fmt.Fprintln(stdout, "                    Display the manifest layout")
	fmt.Fprintln(stdout, "")
	fmt.Fprintln(stdout, "--Output=TEXT|JSON")
	fmt.Fprintln(stdout, "                    Select output format")
	fmt.Fprintln(stdout, "--LogFile=...")
	fmt.Fprintln(stdout, "                    Save the output in the specified file")
	fmt.Fprintln(stdout, "--Config=...")
	fmt.Fprintln(stdout, "                    Read compositor options from a YAML file")
	fmt.Fprintln(stdout, "--BOM")
	fmt.Fprintln(stdout, "                    Byte order mark for UTF-8 output (Windows only)")
	fmt.Fprintln(stdout, "--Verbose, -v")
	fmt.Fprintln(stdout, "                    Log resolution and merge details to stderr")
	fmt.Fprintln(stdout, "--ParseSpeed=0..1")
	fmt.Fprintln(stdout, "                    Below 1, only the first resource of each sequence is read")
	fmt.Fprintln(stdout, "--File_TestContinuousFileNames=0|1")
	fmt.Fprintln(stdout, "                    Expand numbered file names into frame sequences (default 1)")
	fmt.Fprintln(stdout, "--File_IgnoreSequenceFileSize=0|1")
	fmt.Fprintln(stdout, "                    Leave referenced files out of the General file size")
	fmt.Fprintln(stdout, "--File_Source_List=0|1, --File_MD5=0|1")
	fmt.Fprintln(stdout, "                    Add source lists or MD5 hashes of referenced files")
	fmt.Fprintln(stdout, "--Info-Parameters")
	fmt.Fprintln(stdout, "                    Display list of report fields")
	fmt.Fprintln(stdout, "")
	fmt.Fprintln(stdout, "Commands:")
	fmt.Fprintln(stdout, "compose              Composite a manifest with flag-style options")
	fmt.Fprintln(stdout, "serve                Serve compositions over HTTP")
	fmt.Fprintln(stdout, "completion           Generate the autocompletion script for the specified shell")
	fmt.Fprintln(stdout, "help                 Help about any command")
	fmt.Fprintln(stdout, "version              Print refinfo version information")
	fmt.Fprintln(stdout, "update               Update refinfo to latest version (release builds only)")
}

func HelpNothing(program string, stdout io.Writer) {
	fmt.Fprintf(stdout, "Usage: \"%s [-Options...] FileName1 [Filename2...]\"\n", program)
	fmt.Fprintf(stdout, "\"%s --help\" for displaying more information\n", program)
}

func HelpOutput(program string, stdout io.Writer) {
	fmt.Fprintln(stdout, "--Output=...  Select an output format")
	fmt.Fprintf(stdout, "Usage: \"%s --Output=JSON FileName\"\n", program)
	fmt.Fprintln(stdout, "")
	fmt.Fprintln(stdout, "Supported formats:")
	fmt.Fprintln(stdout, "TEXT, JSON")
}

func HelpManifest(stdout io.Writer) {
	fmt.Fprintln(stdout, "title: Feature")
	fmt.Fprintln(stdout, "config:")
	fmt.Fprintln(stdout, "  source_list: true")
	fmt.Fprintln(stdout, "sequences:")
	fmt.Fprintln(stdout, "  - kind: video")
	fmt.Fprintln(stdout, "    id: 1")
	fmt.Fprintln(stdout, "    files: [frames/f000001.dpx]")
	fmt.Fprintln(stdout, "  - kind: audio")
	fmt.Fprintln(stdout, "    id: 2")
	fmt.Fprintln(stdout, "    infos: {Language: en}")
	fmt.Fprintln(stdout, "    resources:")
	fmt.Fprintln(stdout, "      - files: [reel1.wav]")
	fmt.Fprintln(stdout, "        edit_rate: 48000")
	fmt.Fprintln(stdout, "        edits_before: 480")
	fmt.Fprintln(stdout, "      - files: [reel2.wav]")
}

func Usage(program string, stdout io.Writer) int {
	HelpNothing(program, stdout)
	return exitError
}
