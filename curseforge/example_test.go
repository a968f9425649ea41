package curseforge_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"curseforge-mod-updater/curseforge"
)

// ExampleSearchQuery_Encode shows how unset filters are left out.
func ExampleSearchQuery_Encode() {
	q := curseforge.NewSearchQuery()
	fmt.Println(q.Encode())

	q.SearchFilter = curseforge.Ptr("sodium")
	q.ModLoaderType = curseforge.Ptr(curseforge.ModLoaderFabric)
	q.GameVersion = curseforge.Ptr("1.20.1")
	fmt.Println(q.Encode())
	// Output:
	// gameId=432&index=0
	// gameId=432&gameVersion=1.20.1&index=0&modLoaderType=4&searchFilter=sodium
}

// ExampleFingerprint computes the value the fingerprints endpoint matches on.
func ExampleFingerprint() {
	fp, err := curseforge.Fingerprint(strings.NewReader("hello world"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(fp)
	// Output: 2824650221
}

// ExampleClient_GetMods fetches several mods in one request.
func ExampleClient_GetMods() {
	client, err := curseforge.NewClient(os.Getenv("CURSEFORGE_API_KEY"), nil)
	if err != nil {
		log.Fatal(err)
	}

	mods, err := client.GetMods(context.Background(), []curseforge.ID{238222, 306612})
	if err != nil {
		log.Fatal(err)
	}
	for _, mod := range mods {
		fmt.Printf("%d: %s\n", mod.ID, mod.Name)
	}
}
