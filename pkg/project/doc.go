// Package project manages the on-disk layout of a dbt project that uses
// dbt-coves.
//
// Initialize seeds the project with a .dbt_coves folder holding the default
// config.yml and copies of the built in templates, so they can be edited in
// place:
//
//	project-root/
//	├── dbt_project.yml
//	├── .dbt_coves/
//	│   ├── config.yml
//	│   └── templates/
//	└── models/
//
// LoadDbtProject reads the parts of dbt_project.yml that the generate command
// needs, and Models enumerates the SQL models under the configured paths.
//
//	proj := project.New(".")
//	if _, err := proj.Initialize(project.InitOptions{}); err != nil {
//		return err
//	}
//
//	dbt, err := project.LoadDbtProject(".")
//	if err != nil {
//		return err
//	}
//
//	models, err := dbt.Models()
package project
